package live

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/ensmesh/ensmesh/internal/ens"
)

// md renders profile descriptions, which ENS records commonly write in
// markdown. No unsafe raw HTML: descriptions are third-party content.
var md = goldmark.New(
	goldmark.WithExtensions(extension.Linkify),
)

// profileResponse is the popover payload for one identity.
type profileResponse struct {
	Name            string `json:"name"`
	DisplayName     string `json:"display_name,omitempty"`
	EthAddress      string `json:"eth_address,omitempty"`
	Avatar          string `json:"avatar,omitempty"`
	DescriptionHTML string `json:"description_html,omitempty"`
}

// handleProfile serves the profile popover for a node, with its
// description rendered from markdown to HTML.
func (h *Hub) handleProfile(w http.ResponseWriter, r *http.Request) {
	name := ens.NormalizeName(chi.URLParam(r, "name"))

	node, err := h.session.store.GetNodeByName(r.Context(), name)
	if err != nil {
		http.Error(w, `{"error":"failed to load profile"}`, http.StatusInternalServerError)
		return
	}
	if node == nil {
		http.Error(w, `{"error":"identity not found"}`, http.StatusNotFound)
		return
	}

	resp := profileResponse{
		Name:       node.ENSName,
		EthAddress: node.EthAddress,
	}
	if p := node.CachedProfile; p != nil {
		resp.DisplayName = p.DisplayName
		resp.Avatar = p.Avatar
		if p.Description != "" {
			var buf bytes.Buffer
			if err := md.Convert([]byte(p.Description), &buf); err != nil {
				log.Printf("live: rendering description for %s: %v", node.ENSName, err)
			} else {
				resp.DescriptionHTML = buf.String()
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
