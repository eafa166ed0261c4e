package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hyperterse/graphgate/core/infrastructure/logging"
	"github.com/hyperterse/graphgate/core/infrastructure/transport/http/dto"
	"github.com/hyperterse/graphgate/core/shared/errors"
)

// ContentTypeJSON is the content type of every JSON response
const ContentTypeJSON = "application/json;charset=UTF-8"

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	logger logging.Logger
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(tag string) *BaseHandler {
	return &BaseHandler{
		logger: logging.New(tag),
	}
}

// Logger returns the handler's logger
func (h *BaseHandler) Logger() logging.Logger {
	return h.logger
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Errorf("Failed to encode JSON response: %v", err)
	}
}

// WriteError writes err with the status of its error code
func (h *BaseHandler) WriteError(w http.ResponseWriter, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.NewAppError(errors.ErrCodeInternalError, err.Error(), err)
	}
	if errors.IsValidationError(appErr) {
		h.logger.Debugf("Rejected request: %v", appErr)
	} else {
		h.logger.Errorf("Request failed: %v", appErr)
	}

	h.WriteJSON(w, appErr.Status, dto.ErrorResponse{
		Errors: []dto.ErrorDetail{{
			Message:    appErr.Message,
			Extensions: dto.ErrorExtensions{Code: string(appErr.Code)},
		}},
	})
}

// WriteSuccess writes a 200 response
func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, data any) {
	h.WriteJSON(w, http.StatusOK, data)
}
