package api

import (
	"encoding/json"
	"net/http"
)

// Коды ошибок в конверте {"error":{"code","message","details"}}
const (
	codeInvalidJSON    = "invalid_json"
	codeInvalidPayload = "invalid_payload"
	codeBodyTooLarge   = "body_too_large"
	codeRateLimited    = "rate_limited"
	codeSnapshotFailed = "snapshot_failed"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Encoding error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeErrorDetails(w, status, code, message, nil)
}

// writeErrorDetails добавляет в конверт машиночитаемые подробности (поле, лимит и т.п.)
func writeErrorDetails(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message, Details: details}})
}
