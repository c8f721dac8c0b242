package handlers

import (
	"net/http"
	"strconv"

	"github.com/wolfman30/therapy-booking/internal/catalog"
	"github.com/wolfman30/therapy-booking/internal/matching"
	"github.com/wolfman30/therapy-booking/internal/pricing"
	"github.com/wolfman30/therapy-booking/pkg/logging"
)

// CatalogHandler serves therapists, packages, matching and price quotes.
type CatalogHandler struct {
	catalog *catalog.Catalog
	matcher *matching.Matcher
	logger  *logging.Logger
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(c *catalog.Catalog, m *matching.Matcher, logger *logging.Logger) *CatalogHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &CatalogHandler{catalog: c, matcher: m, logger: logger}
}

// ListTherapists returns every therapist in catalog order.
func (h *CatalogHandler) ListTherapists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"therapists": h.catalog.Therapists()})
}

// PackageView adds the derived per-session price to a package.
type PackageView struct {
	catalog.Package
	PerSession int64 `json:"perSession"`
}

// ListPackages returns the session bundles.
func (h *CatalogHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	pkgs := h.catalog.Packages()
	out := make([]PackageView, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, PackageView{Package: p, PerSession: p.PerSession()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"packages": out})
}

// MatchResponse is the best therapist plus the full ranking.
type MatchResponse struct {
	Therapist    catalog.Therapist `json:"therapist"`
	Alternatives []matching.Scored `json:"alternatives"`
}

// Match scores the catalog against questionnaire answers.
func (h *CatalogHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req matching.Request
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	best, err := h.matcher.Match(req)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MatchResponse{Therapist: best, Alternatives: h.matcher.Rank(req)})
}

// Quote prices ?package=<key>&assessment=<bool>.
func (h *CatalogHandler) Quote(w http.ResponseWriter, r *http.Request) {
	pkg, err := h.catalog.Package(catalog.PackageKey(r.URL.Query().Get("package")))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	assessment := false
	if raw := r.URL.Query().Get("assessment"); raw != "" {
		assessment, err = strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "assessment must be a boolean", http.StatusBadRequest)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"package": pkg,
		"quote":   pricing.Calculate(pkg, assessment),
	})
}
