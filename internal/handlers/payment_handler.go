package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/XSparkDev/akalaw/internal/gateway"
	"github.com/XSparkDev/akalaw/internal/models"
	"github.com/XSparkDev/akalaw/internal/service"
	"github.com/gorilla/mux"
)

type PaymentHandler struct {
	service service.PaymentService
	logger  *slog.Logger
}

func NewPaymentHandler(service service.PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger,
	}
}

func (h *PaymentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/payment/initialize", h.InitializePayment).Methods(http.MethodPost)
	router.HandleFunc("/api/payment/save", h.SavePayment).Methods(http.MethodPost)
	router.HandleFunc("/api/payment/verify", h.VerifyPayment).Methods(http.MethodGet)
	router.HandleFunc("/api/download/{reference}", h.DownloadDocument).Methods(http.MethodGet)
	router.HandleFunc("/api/admin/stats", h.PaymentStats).Methods(http.MethodGet)
	router.HandleFunc("/api/admin/customers/{email}/payments", h.CustomerPayments).Methods(http.MethodGet)
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
}

// statusResponse is the JSON envelope shared by the payment endpoints.
type statusResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (h *PaymentHandler) InitializePayment(w http.ResponseWriter, r *http.Request) {
	var req models.InitializePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithStatus(w, http.StatusBadRequest, false, "Invalid request payload", nil)
		return
	}

	resp, err := h.service.InitializePayment(r.Context(), &req, requestMetadata(r))
	if err != nil {
		h.respondPaymentError(w, err, "Failed to initialize payment")
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func (h *PaymentHandler) SavePayment(w http.ResponseWriter, r *http.Request) {
	var req models.SavePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithStatus(w, http.StatusBadRequest, false, "Invalid request payload", nil)
		return
	}

	id, err := h.service.SavePaymentRecord(r.Context(), &req, requestMetadata(r))
	if err != nil {
		h.respondPaymentError(w, err, "Failed to save payment data")
		return
	}

	respondWithStatus(w, http.StatusOK, true, "Payment data saved successfully", map[string]string{
		"firestoreId":      id,
		"paymentReference": req.PaymentReference,
	})
}

func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	reference := r.URL.Query().Get("reference")
	if reference == "" {
		respondWithStatus(w, http.StatusBadRequest, false, "Payment reference is required", nil)
		return
	}

	resp, err := h.service.VerifyPayment(r.Context(), reference)
	if err != nil {
		h.respondPaymentError(w, err, "Failed to verify payment")
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func (h *PaymentHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	reference := mux.Vars(r)["reference"]
	if reference == "" {
		respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "Payment reference is required"})
		return
	}

	download, err := h.service.PrepareDownload(r.Context(), reference, requestMetadata(r))
	if err != nil {
		h.respondDownloadError(w, reference, err)
		return
	}

	h.streamArchive(w, download)
}

func (h *PaymentHandler) respondDownloadError(w http.ResponseWriter, reference string, err error) {
	var notReady *service.NotReadyError
	switch {
	case errors.Is(err, models.ErrPaymentNotFound):
		respondWithJSON(w, http.StatusNotFound, map[string]string{"error": "Payment record not found"})
	case errors.Is(err, models.ErrPaymentNotCompleted):
		respondWithJSON(w, http.StatusForbidden, map[string]string{"error": "Payment not completed successfully"})
	case errors.Is(err, models.ErrDocumentNotFound):
		respondWithJSON(w, http.StatusNotFound, map[string]string{"error": "Document files not found"})
	case errors.As(err, &notReady):
		respondWithJSON(w, http.StatusNotFound, map[string]string{
			"error":         "Document file not available yet. We are preparing your document and will email it to you shortly. Please contact support if you need immediate assistance.",
			"reference":     notReady.Reference,
			"documentTitle": notReady.DocumentTitle,
		})
	default:
		h.logger.Error("download failed", "reference", reference, "error", err)
		respondWithJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}

func (h *PaymentHandler) streamArchive(w http.ResponseWriter, download *service.Download) {
	file, err := os.Open(download.Path)
	if err != nil {
		h.logger.Error("failed to open document archive", "path", download.Path, "error", err)
		respondWithJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		h.logger.Error("failed to stat document archive", "path", download.Path, "error", err)
		respondWithJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+download.FileName+`"`)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.Header().Set("Cache-Control", "private, no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, file); err != nil {
		h.logger.Warn("document stream interrupted",
			"reference", download.Record.PaymentReference,
			"error", err)
		return
	}

	h.logger.Info("document download served",
		"reference", download.Record.PaymentReference,
		"customer", download.Record.CustomerEmail,
		"fileName", download.FileName)
}

func (h *PaymentHandler) PaymentStats(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondWithStatus(w, http.StatusBadRequest, false, "days must be a positive integer", nil)
			return
		}
		days = parsed
	}

	stats, err := h.service.PaymentStatistics(r.Context(), days)
	if err != nil {
		h.logger.Error("failed to compute payment statistics", "error", err)
		respondWithStatus(w, http.StatusInternalServerError, false, "Failed to fetch payment statistics", nil)
		return
	}

	respondWithStatus(w, http.StatusOK, true, "Payment statistics", stats)
}

func (h *PaymentHandler) CustomerPayments(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	if email == "" {
		respondWithStatus(w, http.StatusBadRequest, false, "Customer email is required", nil)
		return
	}

	payments, err := h.service.CustomerPayments(r.Context(), email)
	if err != nil {
		h.logger.Error("failed to fetch customer payments", "customer", email, "error", err)
		respondWithStatus(w, http.StatusInternalServerError, false, "Failed to fetch customer payments", nil)
		return
	}

	respondWithStatus(w, http.StatusOK, true, "Customer payments", payments)
}

func (h *PaymentHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// respondPaymentError maps workflow errors onto the envelope the payment
// endpoints share. Upstream bodies stay in logs only.
func (h *PaymentHandler) respondPaymentError(w http.ResponseWriter, err error, genericMessage string) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		respondWithStatus(w, http.StatusBadRequest, false, validationErr.Message, nil)
		return
	}

	var gatewayErr *gateway.GatewayError
	if errors.As(err, &gatewayErr) {
		h.logger.Error("gateway call failed",
			"operation", gatewayErr.Operation,
			"upstreamStatus", gatewayErr.StatusCode,
			"upstreamBody", gatewayErr.Body)
		respondWithStatus(w, http.StatusInternalServerError, false, genericMessage, nil)
		return
	}

	h.logger.Error(genericMessage, "error", err)
	respondWithStatus(w, http.StatusInternalServerError, false, genericMessage, nil)
}

func requestMetadata(r *http.Request) *models.RequestMetadata {
	return &models.RequestMetadata{
		UserAgent: r.UserAgent(),
		IPAddress: clientIP(r),
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}

func respondWithStatus(w http.ResponseWriter, code int, status bool, message string, data interface{}) {
	respondWithJSON(w, code, statusResponse{Status: status, Message: message, Data: data})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
