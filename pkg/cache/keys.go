package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Keyer builds cache keys for each pipeline stage.
type Keyer interface {
	// LayoutKey identifies the key placements interpreted from a layout.
	LayoutKey(layoutHash string, opts LayoutKeyOpts) string

	// PlateKey identifies the plate derived from a layout.
	PlateKey(layoutHash string, opts PlateKeyOpts) string

	// ArtifactKey identifies an encoded plate in one output format.
	ArtifactKey(plateHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds the options that change interpreted placements.
type LayoutKeyOpts struct {
	Unit float64 `json:"unit"`
}

// PlateKeyOpts holds the options that change a derived plate.
type PlateKeyOpts struct {
	Unit         float64 `json:"unit"`
	Margin       float64 `json:"margin"`
	Thickness    float64 `json:"thickness"`
	SwitchCutout float64 `json:"switch_cutout"`
	CornerRadius float64 `json:"corner_radius"`
	Stabilizer   string  `json:"stabilizer"`
	Threshold    float64 `json:"threshold"`
}

// ArtifactKeyOpts holds the options that change an encoded artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// DefaultKeyer hashes the stage input together with its options.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey returns "layout:<sha256>".
func (k *DefaultKeyer) LayoutKey(layoutHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", layoutHash, opts)
}

// PlateKey returns "plate:<sha256>".
func (k *DefaultKeyer) PlateKey(layoutHash string, opts PlateKeyOpts) string {
	return hashKey("plate", layoutHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (k *DefaultKeyer) ArtifactKey(plateHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", plateHash, opts)
}

var _ Keyer = (*DefaultKeyer)(nil)

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashLayout hashes layout text with CRLF line endings folded to LF and
// surrounding whitespace trimmed. Neither changes how a layout interprets.
func HashLayout(layout string) string {
	return Hash([]byte(strings.TrimSpace(strings.ReplaceAll(layout, "\r\n", "\n"))))
}

// hashKey returns "<prefix>:<sha256 of the JSON-encoded parts>".
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}
