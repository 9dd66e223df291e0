package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"scaler/pkg/zip"
)

const maxExportItems = 20

type exportRequest struct {
	Items []struct {
		URL      string `json:"url"`
		Filename string `json:"filename"`
	} `json:"items"`
}

// CreativeExport downloads the given creative images and streams them back as
// one zip archive.
func (a *App) CreativeExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if len(req.Items) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "items is required")
		return
	}
	if len(req.Items) > maxExportItems {
		a.error(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("at most %d items per export", maxExportItems))
		return
	}

	assets := make([]zip.Asset, 0, len(req.Items))
	for i, item := range req.Items {
		if !strings.HasPrefix(item.URL, "https://") {
			a.error(w, http.StatusBadRequest, "bad_request", "item urls must be https")
			return
		}
		data, mime, err := a.fetchImage(r, item.URL)
		if err != nil {
			a.Logger.Warn().Err(err).Str("url", item.URL).Msg("export item fetch failed")
			a.error(w, http.StatusBadGateway, "fetch_failed", "failed to download "+item.URL)
			return
		}
		filename := item.Filename
		if filename == "" {
			filename = fmt.Sprintf("creative-%02d%s", i+1, zip.ExtensionForMIME(mime))
		}
		assets = append(assets, zip.Asset{Filename: filename, MIME: mime, Data: data})
	}

	archive := zip.ArchiveAssets(assets)
	if archive == nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}

	name := fmt.Sprintf("creatives-%s.zip", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func (a *App) fetchImage(r *http.Request, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := a.Fetch.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}
