package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Krimson/ctg-contractions/analyzer/internal/contraction"
	"github.com/Krimson/ctg-contractions/analyzer/internal/health"
	"github.com/Krimson/ctg-contractions/analyzer/internal/series"
	"github.com/Krimson/ctg-contractions/analyzer/internal/service"
	"github.com/Krimson/ctg-contractions/analyzer/internal/websocket"
	"github.com/Krimson/ctg-contractions/analyzer/pkg/models"
)

const maxUploadMemory = 32 << 20

type HTTPHandler struct {
	analysisService *service.AnalysisService
	hub             *websocket.Hub
	monitor         *health.Monitor
	logger          zerolog.Logger
}

// NewHTTPHandler создает обработчик. hub и monitor могут быть nil.
func NewHTTPHandler(analysisService *service.AnalysisService, hub *websocket.Hub, monitor *health.Monitor, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		analysisService: analysisService,
		hub:             hub,
		monitor:         monitor,
		logger:          logger.With().Str("component", "http").Logger(),
	}
}

// Router собирает все маршруты с middleware
func (h *HTTPHandler) Router() http.Handler {
	router := mux.NewRouter()
	h.RegisterRoutes(router)
	router.Use(h.recoverPanics, h.logRequests, enableCORS)
	return router
}

// RegisterRoutes регистрирует маршруты в роутере
func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/recordings", h.UploadCSV).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/recordings/{id}", h.GetRecording).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/recordings/{id}", h.DeleteRecording).Methods(http.MethodDelete)
	api.HandleFunc("/recordings/{id}/analysis", h.GetAnalysis).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/recordings/{id}/analysis", h.PostAnalysis).Methods(http.MethodPost)
	api.HandleFunc("/recordings/{id}/decision", h.HandleDecision).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/rules", h.GetRules).Methods(http.MethodGet, http.MethodOptions)

	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/debug/stats", h.Stats).Methods(http.MethodGet)
	router.HandleFunc("/ws/recordings/{id}", h.ServeWebSocket)

	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))
}

// UploadCSV загружает CSV с UC-рядом и возвращает анализ с параметрами по умолчанию
// @Summary Загрузить CSV для анализа схваток
// @Description Загружает CSV с колонками time и UC, кеширует запись и выполняет поиск и классификацию схваток
// @Tags Recordings
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV файл с колонками time (секунды) и UC"
// @Param recording_id formData string false "ID записи (генерируется автоматически если не указан)"
// @Param name formData string false "Название записи"
// @Success 201 {object} models.UploadResponse "Результат анализа"
// @Failure 400 {object} map[string]interface{} "Неверный запрос или CSV"
// @Failure 500 {object} map[string]interface{} "Ошибка обработки"
// @Router /api/recordings [post]
func (h *HTTPHandler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, http.StatusBadRequest, "Failed to parse form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to get file: "+err.Error())
		return
	}
	defer file.Close()

	h.logger.Info().
		Str("filename", header.Filename).
		Int64("size", header.Size).
		Msg("received CSV upload")

	response, err := h.analysisService.UploadCSV(r.Context(), file, r.FormValue("recording_id"), r.FormValue("name"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, response)
}

// GetRecording возвращает загруженную запись
// @Summary Получить запись
// @Tags Recordings
// @Produce json
// @Param id path string true "ID записи"
// @Success 200 {object} models.Recording
// @Failure 404 {object} map[string]interface{} "Запись не найдена"
// @Router /api/recordings/{id} [get]
func (h *HTTPHandler) GetRecording(w http.ResponseWriter, r *http.Request) {
	recording, err := h.analysisService.GetRecording(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, recording)
}

// DeleteRecording удаляет запись из кеша и базы
// @Summary Удалить запись
// @Tags Recordings
// @Param id path string true "ID записи"
// @Success 204
// @Failure 404 {object} map[string]interface{} "Запись не найдена"
// @Router /api/recordings/{id} [delete]
func (h *HTTPHandler) DeleteRecording(w http.ResponseWriter, r *http.Request) {
	if err := h.analysisService.DeleteRecording(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetAnalysis пересчитывает анализ с параметрами из query
// @Summary Анализ записи
// @Description Пересчитывает схватки. Без параметров используются значения по умолчанию.
// @Tags Analysis
// @Produce json
// @Param id path string true "ID записи"
// @Param min_height query number false "Минимальная амплитуда пика"
// @Param min_distance_samples query number false "Минимальное расстояние между пиками в сэмплах"
// @Param min_distance_sec query number false "Минимальное расстояние между пиками в секундах"
// @Success 200 {object} models.AnalysisResponse
// @Failure 400 {object} map[string]interface{} "Неверные параметры"
// @Failure 404 {object} map[string]interface{} "Запись не найдена"
// @Router /api/recordings/{id}/analysis [get]
func (h *HTTPHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	params, err := paramsFromQuery(r)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.analyze(w, r, params)
}

// PostAnalysis пересчитывает анализ с параметрами из тела запроса
// @Summary Анализ записи с параметрами
// @Tags Analysis
// @Accept json
// @Produce json
// @Param id path string true "ID записи"
// @Param request body models.AnalysisRequest false "Параметры анализа"
// @Success 200 {object} models.AnalysisResponse
// @Failure 400 {object} map[string]interface{} "Неверные параметры"
// @Failure 404 {object} map[string]interface{} "Запись не найдена"
// @Router /api/recordings/{id}/analysis [post]
func (h *HTTPHandler) PostAnalysis(w http.ResponseWriter, r *http.Request) {
	var req models.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	h.analyze(w, r, req.Params)
}

func (h *HTTPHandler) analyze(w http.ResponseWriter, r *http.Request, params contraction.Params) {
	response, err := h.analysisService.Analyze(r.Context(), mux.Vars(r)["id"], params)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// HandleDecision сохраняет или отклоняет запись
// @Summary Принять решение о сохранении
// @Description Сохраняет запись в базу данных или удаляет ее из кеша
// @Tags Recordings
// @Accept json
// @Produce json
// @Param id path string true "ID записи"
// @Param request body models.SaveDecision true "Решение о сохранении"
// @Success 200 {object} models.DecisionResponse "Результат операции"
// @Failure 400 {object} map[string]interface{} "Неверный запрос"
// @Failure 404 {object} map[string]interface{} "Запись не найдена"
// @Router /api/recordings/{id}/decision [post]
func (h *HTTPHandler) HandleDecision(w http.ResponseWriter, r *http.Request) {
	var decision models.SaveDecision
	if err := json.NewDecoder(r.Body).Decode(&decision); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	pathID := mux.Vars(r)["id"]
	if decision.RecordingID != "" && decision.RecordingID != pathID {
		respondError(w, http.StatusBadRequest, "recording_id in body does not match the path")
		return
	}
	decision.RecordingID = pathID

	response, err := h.analysisService.HandleDecision(r.Context(), &decision)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetRules возвращает активную таблицу классификации
// @Summary Таблица классификации схваток
// @Description Границы в секундах; верхняя граница null означает бесконечность
// @Tags Analysis
// @Produce json
// @Success 200 {array} contraction.Rule
// @Router /api/rules [get]
func (h *HTTPHandler) GetRules(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"rules":    h.analysisService.Rules(),
		"defaults": h.analysisService.Defaults(),
	})
}

// Health отдает состояние зависимостей
func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.monitor == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
		return
	}

	status := http.StatusOK
	state := "ok"
	if !h.monitor.Healthy() {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}

	respondJSON(w, status, map[string]interface{}{
		"status": state,
		"checks": h.monitor.Results(),
	})
}

func (h *HTTPHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.analysisService.Stats()
	if h.hub != nil {
		stats["websocket_clients"] = h.hub.ClientCount()
	}
	stats["timestamp"] = time.Now().Format(time.RFC3339)

	respondJSON(w, http.StatusOK, stats)
}

func (h *HTTPHandler) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "websocket is disabled")
		return
	}

	h.hub.ServeRecording(w, r, mux.Vars(r)["id"])
}

func paramsFromQuery(r *http.Request) (contraction.Params, error) {
	var p contraction.Params

	fields := []struct {
		name   string
		target **float64
	}{
		{"min_height", &p.MinHeight},
		{"min_distance_samples", &p.MinDistanceSamples},
		{"min_distance_sec", &p.MinDistanceSeconds},
	}

	query := r.URL.Query()
	for _, f := range fields {
		raw := query.Get(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return p, &contraction.ParamError{Field: f.name, Reason: "not a number: " + strconv.Quote(raw)}
		}
		*f.target = &v
	}

	return p, nil
}

// statusFor переводит ошибку сервиса в HTTP статус
func statusFor(err error) int {
	var (
		missing  *series.MissingColumnError
		parseErr *series.ParseError
		paramErr *contraction.ParamError
	)

	switch {
	case errors.As(err, &missing), errors.As(err, &parseErr), errors.As(err, &paramErr):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrEmptyRecordingID):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrRecordingNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *HTTPHandler) respondServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Msg("request failed")
		respondError(w, status, "Internal error: "+err.Error())
		return
	}
	respondError(w, status, err.Error())
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":  message,
		"status": status,
	})
}
