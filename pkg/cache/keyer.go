package cache

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// LayoutKey identifies a grid computed for a diagram.
	LayoutKey(diagramHash string, opts LayoutKeyOpts) string

	// CheckKey identifies a check result for a target and its axioms.
	CheckKey(targetHash string, axiomHashes []string, opts CheckKeyOpts) string

	// RenderKey identifies one rendered artifact of a laid-out diagram.
	RenderKey(layoutHash string, opts RenderKeyOpts) string
}

// LayoutKeyOpts holds the layout options that change the grid.
type LayoutKeyOpts struct {
	Mode      string     `json:"mode"`
	Vertical  bool       `json:"vertical,omitempty"`
	Transpose bool       `json:"transpose,omitempty"`
	Groups    [][]string `json:"groups,omitempty"`
}

// CheckKeyOpts holds the search options that change a completed result.
// Budget, timeout and worker count are absent: only searches that ran to
// completion are cached, and those do not depend on them.
type CheckKeyOpts struct {
	MaxCandidates int `json:"max_candidates,omitempty"`
	Paths         int `json:"paths,omitempty"`
}

// RenderKeyOpts holds the renderer options that change an artifact.
type RenderKeyOpts struct {
	Format     string  `json:"format"`
	Spacing    float64 `json:"spacing,omitempty"`
	Identities bool    `json:"identities,omitempty"`
	Composites bool    `json:"composites,omitempty"`
	Scale      float64 `json:"scale,omitempty"`
}

// DefaultKeyer hashes the key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<hash>".
func (DefaultKeyer) LayoutKey(diagramHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", diagramHash, opts)
}

// CheckKey returns "check:<hash>". Axiom order matters because it breaks
// ties during cover selection.
func (DefaultKeyer) CheckKey(targetHash string, axiomHashes []string, opts CheckKeyOpts) string {
	return hashKey("check", targetHash, axiomHashes, opts)
}

// RenderKey returns "render:<format>:<hash>".
func (DefaultKeyer) RenderKey(layoutHash string, opts RenderKeyOpts) string {
	return hashKey("render:"+opts.Format, layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
