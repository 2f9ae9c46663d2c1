package api

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"weatherview/internal/weather"
	"weatherview/internal/weatherapi"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type Handler struct {
	service *weather.Service
}

func NewHandler(service *weather.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the screen at / and the JSON API under /v1.
// apiMiddleware runs only for /v1 routes.
func (h *Handler) RegisterRoutes(r *gin.Engine, apiMiddleware ...gin.HandlerFunc) {
	r.SetHTMLTemplate(pageTemplate)

	r.GET("/", h.index)
	r.POST("/refresh", h.refresh)
	r.POST("/search", h.search)
	r.POST("/search/open", h.openSearch)
	r.POST("/search/cancel", h.cancelSearch)
	r.POST("/select", h.selectRecord)
	r.GET("/health", h.health)

	var mw []gin.HandlerFunc
	for _, m := range apiMiddleware {
		if m != nil {
			mw = append(mw, m)
		}
	}
	v1 := r.Group("/v1", mw...)
	v1.GET("/state", h.getState)
	v1.GET("/hours", h.getHours)
	v1.POST("/search", h.postSearch)
	v1.POST("/refresh", h.postRefresh)
	v1.POST("/select", h.postSelect)
}

// RequestLogger logs one line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (h *Handler) index(c *gin.Context) {
	tab := normalizeTab(c.Query("tab"))
	st := h.service.State()

	records, err := h.records(st, tab)
	banner := st.Error
	if err != nil {
		slog.Error("failed to expand hourly forecast", "err", err)
		banner = err.Error()
	}

	cur := st.Current
	c.HTML(http.StatusOK, "index.html", page{
		Tab:           tab,
		City:          cur.City,
		Time:          cur.Time,
		Temp:          TempText(cur),
		Range:         RangeText(cur),
		Condition:     cur.Condition,
		Wind:          WindText(cur),
		Icon:          IconURL(cur.Icon),
		Rows:          rowsFor(records, cur),
		SearchVisible: st.SearchVisible,
		Loading:       st.Loading,
		Error:         banner,
	})
}

func (h *Handler) refresh(c *gin.Context) {
	h.service.Refresh()
	redirectHome(c)
}

func (h *Handler) search(c *gin.Context) {
	// Blank input is reported through the banner.
	_, _ = h.service.Search(c.PostForm("city"))
	redirectHome(c)
}

func (h *Handler) openSearch(c *gin.Context) {
	h.service.OpenSearch()
	redirectHome(c)
}

func (h *Handler) cancelSearch(c *gin.Context) {
	h.service.CloseSearch()
	redirectHome(c)
}

// selectRecord handles a row click. The form carries the row's time as well
// as its index, so a click on a page rendered before the latest fetch
// landed selects nothing rather than a different day.
func (h *Handler) selectRecord(c *gin.Context) {
	tab := normalizeTab(c.PostForm("tab"))
	rec, err := h.resolve(tab, c.PostForm("index"))
	switch {
	case err != nil:
		slog.Debug("ignoring row selection", "tab", tab, "err", err)
	case c.PostForm("time") != "" && c.PostForm("time") != rec.Time:
		slog.Debug("ignoring row selection from outdated page", "tab", tab, "time", c.PostForm("time"))
	default:
		h.service.Select(rec)
	}
	redirectHome(c)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type stateJSON struct {
	weather.ViewState
	Hours []weather.Record `json:"hours"`
}

func (h *Handler) getState(c *gin.Context) {
	st := h.service.State()
	hours, err := weatherapi.NormalizeHours(st.Current.Hours)
	if err != nil {
		slog.Error("failed to expand hourly forecast", "err", err)
		writeJSONError(c, "hourly forecast unavailable", http.StatusInternalServerError)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, stateJSON{ViewState: st, Hours: hours})
}

func (h *Handler) getHours(c *gin.Context) {
	hours, err := weatherapi.NormalizeHours(h.service.State().Current.Hours)
	if err != nil {
		slog.Error("failed to expand hourly forecast", "err", err)
		writeJSONError(c, "hourly forecast unavailable", http.StatusInternalServerError)
		return
	}
	if hours == nil {
		hours = []weather.Record{}
	}
	c.JSON(http.StatusOK, hours)
}

type searchJSON struct {
	City string `json:"city"`
}

func (h *Handler) postSearch(c *gin.Context) {
	var body searchJSON
	if err := c.ShouldBindJSON(&body); err != nil {
		writeJSONError(c, "invalid body", http.StatusBadRequest)
		return
	}
	req, err := h.service.Search(body.City)
	if errors.Is(err, weather.ErrEmptyCitySelection) {
		writeJSONError(c, "city is required", http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"seq": req.Seq, "city": req.City})
}

func (h *Handler) postRefresh(c *gin.Context) {
	req := h.service.Refresh()
	c.JSON(http.StatusAccepted, gin.H{"seq": req.Seq, "city": req.City})
}

type selectJSON struct {
	Tab   string `json:"tab"`
	Index int    `json:"index"`
}

func (h *Handler) postSelect(c *gin.Context) {
	var body selectJSON
	if err := c.ShouldBindJSON(&body); err != nil {
		writeJSONError(c, "invalid body", http.StatusBadRequest)
		return
	}
	rec, ok := h.lookup(c, normalizeTab(body.Tab), strconv.Itoa(body.Index))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": h.service.Select(rec)})
}

func (h *Handler) records(st weather.ViewState, tab string) ([]weather.Record, error) {
	if tab == tabDays {
		return st.Days, nil
	}
	return weatherapi.NormalizeHours(st.Current.Hours)
}

var errBadIndex = errors.New("invalid index")

// resolve returns the row at index in tab, read from the current state.
func (h *Handler) resolve(tab, index string) (weather.Record, error) {
	records, err := h.records(h.service.State(), tab)
	if err != nil {
		return weather.Record{}, err
	}
	i, err := strconv.Atoi(index)
	if err != nil || i < 0 || i >= len(records) {
		return weather.Record{}, errBadIndex
	}
	return records[i], nil
}

// lookup is resolve for the JSON API, writing the error response itself.
func (h *Handler) lookup(c *gin.Context, tab, index string) (weather.Record, bool) {
	rec, err := h.resolve(tab, index)
	switch {
	case errors.Is(err, errBadIndex):
		writeJSONError(c, "invalid index", http.StatusBadRequest)
		return weather.Record{}, false
	case err != nil:
		slog.Error("failed to expand hourly forecast", "err", err)
		writeJSONError(c, "hourly forecast unavailable", http.StatusInternalServerError)
		return weather.Record{}, false
	}
	return rec, true
}

func redirectHome(c *gin.Context) {
	target := "/"
	if tab := c.PostForm("tab"); tab != "" {
		target += "?" + url.Values{"tab": {normalizeTab(tab)}}.Encode()
	}
	c.Redirect(http.StatusSeeOther, target)
}

func writeJSONError(c *gin.Context, msg string, status int) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
