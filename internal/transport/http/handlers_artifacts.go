package httptransport

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	dErrors "mindcast/pkg/domain-errors"
	"mindcast/pkg/platform/httputil"
)

// ArtifactsHandler serves rendered videos from the work directory. The
// publish stage hands these URLs to the social platform, which fetches the
// file over plain GET.
type ArtifactsHandler struct {
	workDir string
}

// NewArtifactsHandler constructs the artifacts handler.
func NewArtifactsHandler(workDir string) *ArtifactsHandler {
	return &ArtifactsHandler{workDir: workDir}
}

// Register mounts the artifact route.
func (h *ArtifactsHandler) Register(r chi.Router) {
	r.Get("/artifacts/{name}", h.get)
}

func (h *ArtifactsHandler) get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	// The name must resolve to a file directly inside workDir.
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid artifact name"))
		return
	}

	path := filepath.Join(h.workDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "artifact not found"))
		return
	}
	http.ServeFile(w, r, path)
}
