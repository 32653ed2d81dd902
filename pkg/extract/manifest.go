package extract

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/swot-confluence/offline/pkg/constants"
	"github.com/swot-confluence/offline/pkg/dataset"
	"github.com/swot-confluence/offline/pkg/errors"
	"github.com/swot-confluence/offline/pkg/logging"
)

// metroManSuffix ends every MetroMan output file name.
const metroManSuffix = "_" + constants.MetroManDir + constants.NetCDFExt

var digitRun = regexp.MustCompile(`[0-9]+`)

// Manifest indexes the MetroMan output directory by reach identifier.
// MetroMan writes one file per reach set, named after the reaches it
// covers, so a reach is found by the identifiers embedded in file names
// rather than by a fixed name. The directory is scanned once; lookups are
// safe for concurrent use.
type Manifest struct {
	dir     string
	files   []string
	byReach map[int64][]string
}

// BuildManifest scans dir for MetroMan outputs. A missing directory yields
// an empty manifest: every reach then resolves to no MetroMan file.
func BuildManifest(ctx context.Context, store *dataset.Store, dir string) (*Manifest, error) {
	logger := logging.FromContext(ctx)

	m := &Manifest{dir: dir, byReach: make(map[int64][]string)}

	names, err := store.ReadDir(dir)
	if err != nil {
		if errors.IsSourceNotFound(err) {
			logger.Warn().Str("dir", dir).Msg("MetroMan directory not found")
			return m, nil
		}
		return nil, err
	}

	for _, name := range names {
		if !strings.HasSuffix(name, metroManSuffix) {
			continue
		}
		path := filepath.Join(dir, name)
		m.files = append(m.files, path)

		stem := strings.TrimSuffix(name, metroManSuffix)
		seen := make(map[int64]bool)
		for _, tok := range digitRun.FindAllString(stem, -1) {
			id, err := strconv.ParseInt(tok, 10, 64)
			if err != nil || seen[id] {
				continue
			}
			seen[id] = true
			m.byReach[id] = append(m.byReach[id], path)
		}
	}

	logger.Debug().
		Str("dir", dir).
		Int("files", len(m.files)).
		Int("reaches", len(m.byReach)).
		Msg("built MetroMan manifest")

	return m, nil
}

// Dir returns the scanned directory.
func (m *Manifest) Dir() string {
	return m.dir
}

// Files returns every MetroMan file found, sorted.
func (m *Manifest) Files() []string {
	return append([]string(nil), m.files...)
}

// Len returns the number of MetroMan files found.
func (m *Manifest) Len() int {
	return len(m.files)
}

// Matches returns the files whose name carries reachID.
func (m *Manifest) Matches(reachID int64) []string {
	return append([]string(nil), m.byReach[reachID]...)
}

// Lookup returns the single MetroMan file of reachID. Zero or several
// candidates are an AmbiguousMatchError.
func (m *Manifest) Lookup(reachID int64) (string, error) {
	matches := m.byReach[reachID]
	if len(matches) != 1 {
		return "", errors.NewAmbiguousMatchError(m.pattern(reachID), reachID, m.Matches(reachID))
	}
	return matches[0], nil
}

// Validate checks that every reach resolves to exactly one file and reports
// all failures together.
func (m *Manifest) Validate(reachIDs []int64) error {
	var errs []error
	for _, id := range reachIDs {
		if _, err := m.Lookup(id); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func (m *Manifest) pattern(reachID int64) string {
	return filepath.Join(m.dir, "*"+strconv.FormatInt(reachID, 10)+"*"+metroManSuffix)
}
