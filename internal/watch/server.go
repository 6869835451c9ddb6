// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package watch

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/kraklabs/graphmap/pkg/graph"
)

// Update is the §6.4 watch-mode wire message.
type Update struct {
	Type  string          `json:"type"`
	Graph *graph.CodeGraph `json:"graph"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server is the viewer transport: a websocket endpoint that broadcasts one
// Update per connected client every time Broadcast is called. The core
// produces the graph (per §6.4, "the transport is external"); Server only
// fans it out.
type Server struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewServer returns an empty, ready-to-use Server.
func NewServer() *Server {
	return &Server{clients: make(map[*websocket.Conn]struct{})}
}

// HandleWS upgrades the request to a websocket connection and registers it
// as a broadcast recipient until it disconnects.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("watch.server.upgrade_failed", "error", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		_ = conn.Close()
	}()

	// Drain and discard inbound messages; this is a push-only transport,
	// but an idle websocket reader is needed to detect client disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends a graph-update event to every connected client,
// dropping any connection that fails to write.
func (s *Server) Broadcast(g *graph.CodeGraph) {
	s.mu.Lock()
	defer s.mu.Unlock()

	update := Update{Type: "graph-update", Graph: g}
	for conn := range s.clients {
		if err := conn.WriteJSON(update); err != nil {
			slog.Warn("watch.server.broadcast_failed", "error", err)
			delete(s.clients, conn)
			_ = conn.Close()
		}
	}
}

// ClientCount returns the number of currently connected clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
