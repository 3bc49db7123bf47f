package handlers

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
)

const (
	typeError   = "error"
	jsonContent = "application/json"
)

func DecodeJSONBody(w http.ResponseWriter, r *http.Request, req any) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != jsonContent {
		writeError(w, http.StatusBadRequest, typeError, "invalid Content-Type")
		return false
	}

	defer r.Body.Close()

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, typeError, "bad json")
		return false
	}

	return true
}

func WriteResp(w http.ResponseWriter, logger *slog.Logger, body map[string]any, status int) bool {
	w.Header().Set("Content-Type", jsonContent)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to write JSON response", slog.Any("err", err))
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, field, msg string) {
	w.Header().Set("Content-Type", jsonContent)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{field: msg}); err != nil {
		return
	}
}
