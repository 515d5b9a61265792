package graph

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ensmesh/ensmesh/internal/ens"
)

// RegisterRoutes mounts the graph API routes.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/graph", func(r chi.Router) {
		r.Get("/", handleGetGraph(store))
		r.Get("/nodes", handleListNodes(store))
		r.Post("/nodes", handleCreateNode(store))
		r.Get("/nodes/{name}", handleGetNode(store))
		r.Post("/edges", handleCreateEdge(store))
		r.Delete("/edges/{id}", handleDeleteEdge(store))
	})
}

func handleGetGraph(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := store.GetGraphData(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if data.Nodes == nil {
			data.Nodes = []Node{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(data)
	}
}

func handleListNodes(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nodes, err := store.GetNodes(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if nodes == nil {
			nodes = []Node{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(nodes)
	}
}

type createNodeRequest struct {
	ENSName    string   `json:"ens_name"`
	EthAddress string   `json:"eth_address"`
	Profile    *Profile `json:"cached_profile"`
}

func handleCreateNode(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createNodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.ENSName == "" {
			http.Error(w, `{"error":"ens_name is required"}`, http.StatusBadRequest)
			return
		}
		name := ens.NormalizeName(req.ENSName)
		if !ens.IsValidName(name) {
			http.Error(w, `{"error":"invalid ENS name"}`, http.StatusBadRequest)
			return
		}

		node, err := store.CreateNode(r.Context(), name, req.EthAddress, req.Profile)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(node)
	}
}

func handleGetNode(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		node, err := store.GetNodeByName(r.Context(), name)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if node == nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(node)
	}
}

type createEdgeRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

func handleCreateEdge(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createEdgeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Source == "" || req.Target == "" {
			http.Error(w, `{"error":"source and target are required"}`, http.StatusBadRequest)
			return
		}
		source := ens.NormalizeName(req.Source)
		target := ens.NormalizeName(req.Target)
		if !ens.IsValidName(source) || !ens.IsValidName(target) {
			http.Error(w, `{"error":"invalid ENS name"}`, http.StatusBadRequest)
			return
		}

		rel, err := store.CreateEdgeByNames(r.Context(), source, target, req.Type)
		if err != nil {
			if errors.Is(err, ErrDuplicateConnection) {
				http.Error(w, `{"error":"`+ErrDuplicateConnection.Error()+`"}`, http.StatusConflict)
				return
			}
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(rel)
	}
}

func handleDeleteEdge(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := store.DeleteRelationship(r.Context(), id); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
	}
}
