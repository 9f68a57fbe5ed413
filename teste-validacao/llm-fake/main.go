// Servidor fake no formato Messages para validar o backend "messages" sem
// chamar uma API de verdade:
//
//	go run ./teste-validacao/llm-fake
//	GENERATOR_BACKEND=messages MESSAGES_API_URL=http://localhost:8082/v1/messages \
//	MESSAGES_API_KEY=x go run ./cmd/pagegen
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync/atomic"
	"time"
)

func main() {
	var calls atomic.Int64
	delay := 3 * time.Second
	if v, err := time.ParseDuration(os.Getenv("FAKE_DELAY")); err == nil {
		delay = v
	}

	http.HandleFunc("POST /v1/messages", func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		log.Printf("Log: chamada #%d em /v1/messages", n)
		time.Sleep(delay)

		// a cada 4 chamadas simula sobrecarga, para ver o conteúdo stale sendo servido.
		if n%4 == 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"type":  "error",
				"error": map[string]string{"type": "overloaded_error", "message": "Overloaded"},
			})
			return
		}

		page := fmt.Sprintf("Claro! Aqui está a página:\n<!DOCTYPE html><html><body><h1>Tela #%d</h1><p>%s</p></body></html>\nEspero que goste.",
			n, time.Now().Format(time.RFC3339))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content":     []map[string]string{{"type": "text", "text": page}},
			"stop_reason": "end_turn",
		})
	})

	addr := ":8082"
	fmt.Println("Servidor fake rodando em http://localhost" + addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		fmt.Printf("Erro ao subir o servidor: %s\n", err)
	}
}
