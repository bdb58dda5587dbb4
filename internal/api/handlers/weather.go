package handlers

import (
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/raminkz/gotodo/internal/api/dto"
	"github.com/raminkz/gotodo/pkg/config"
	"github.com/redis/go-redis/v9"
)

// WeatherHandler proxies the external weather provider and caches each
// city's payload in redis for the configured TTL (20 minutes by default).
type WeatherHandler struct {
	cfg    config.WeatherConfig
	redis  *redis.Client
	client *http.Client
}

func NewWeatherHandler(cfg config.WeatherConfig, redisClient *redis.Client) *WeatherHandler {
	return &WeatherHandler{
		cfg:    cfg,
		redis:  redisClient,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Get handles GET /api/v1/weather?city=...
func (h *WeatherHandler) Get(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Detail: "city query parameter is required"})
		return
	}

	cacheKey := "weather:" + city
	if h.redis != nil {
		if cached, err := h.redis.Get(r.Context(), cacheKey).Bytes(); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(cached)
			return
		}
	}

	reqURL, err := url.Parse(h.cfg.APIURL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Detail: "Weather provider misconfigured"})
		return
	}
	q := reqURL.Query()
	q.Set("q", city)
	if h.cfg.APIKey != "" {
		q.Set("appid", h.cfg.APIKey)
	}
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, reqURL.String(), nil)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Detail: "Weather request failed"})
		return
	}

	resp, err := h.client.Do(req)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, dto.ErrorResponse{Detail: "Weather provider unavailable"})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		writeJSON(w, http.StatusBadGateway, dto.ErrorResponse{Detail: "Weather provider returned an error"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadGateway, dto.ErrorResponse{Detail: "Weather provider unavailable"})
		return
	}

	if h.redis != nil {
		h.redis.Set(r.Context(), cacheKey, body, h.cfg.CacheTTL())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
