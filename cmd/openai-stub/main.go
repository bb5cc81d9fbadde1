// Command openai-stub is a deterministic chat-completion server for manual
// end-to-end runs of termsense without a real API key.
package main

import (
	"encoding/json"
	"hash/fnv"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/termsense/internal/analysis"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func writeError(w http.ResponseWriter, status int, message, typ string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": message, "type": typ},
	})
}

// score is stable for a given category and page text.
func score(category, text string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(category))
	_, _ = h.Write([]byte(text))
	return int(h.Sum32()%5) + 1
}

func completion(prompt string) string {
	if strings.Contains(prompt, "potential red flags") {
		return "Summary:\nYou agree to the site's terms.\n\nKey points:\n- Your data is collected.\n\nRed flags:\n- None found by the stub."
	}
	rationale := strings.Contains(prompt, "rationale")
	var sb strings.Builder
	for i, c := range analysis.Categories {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(c + ": " + strconv.Itoa(score(c, prompt)) + "/5")
		if rationale {
			sb.WriteString("\nThe stub always says the same thing about " + strings.ToLower(c) + ".")
		}
	}
	return sb.String()
}

func newHandler(model string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		key := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		switch key {
		case "":
			writeError(w, http.StatusUnauthorized, "missing_api_key", "invalid_request_error")
			return
		case "invalid":
			writeError(w, http.StatusUnauthorized, "invalid_api_key", "invalid_request_error")
			return
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			writeError(w, http.StatusBadRequest, "messages are required", "invalid_request_error")
			return
		}
		content := completion(req.Messages[len(req.Messages)-1].Content)
		log.Debug().Str("model", req.Model).Int("prompt_chars", len(req.Messages[0].Content)).Msg("completion")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-stub",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   req.Model,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			}},
		})
	})
	return mux
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = analysis.DefaultModel
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}
	log.Info().Str("addr", addr).Str("model", model).Msg("openai-stub listening")
	if err := http.ListenAndServe(addr, newHandler(model)); err != nil {
		log.Fatal().Err(err).Msg("serve")
	}
}
