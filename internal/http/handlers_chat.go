package http

import (
	"net/http"

	"bullfinance/internal/chat"
	"bullfinance/internal/log"
)

// handleChat always answers 200; failures surface as the fallback reply.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := decodeJSON(w, r, &req); err != nil {
		_, msg := statusFor(err)
		writeJSON(w, http.StatusOK, chat.Response{Response: chat.FallbackError, Error: msg})
		return
	}
	ctx := log.WithContext(r.Context(), log.FromContext(r.Context()).WithComponent(log.ComponentChat))
	writeJSON(w, http.StatusOK, s.svc.Chat.Reply(ctx, req))
}
