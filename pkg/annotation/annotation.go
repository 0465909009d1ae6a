// Package annotation persists manual landmark annotations as CSV files,
// one file per image, in a Labels directory alongside the image folder.
// The format is a header row followed by one `label,x,y,z` row per
// landmark, with integer voxel coordinates.
package annotation

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Record is one stored annotation: a landmark label and its voxel position.
type Record struct {
	Label string
	X     int
	Y     int
	Z     int
}

// Store reads and writes annotation CSV files inside one Labels directory.
type Store struct {
	labelsDir string
}

// NewStore creates the Labels directory if needed and returns a store
// rooted there.
func NewStore(labelsDir string) (*Store, error) {
	if err := os.MkdirAll(labelsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create labels directory: %w", err)
	}
	return &Store{labelsDir: labelsDir}, nil
}

// Dir returns the Labels directory the store is rooted at.
func (s *Store) Dir() string {
	return s.labelsDir
}

// csvName derives the CSV filename for an image. The double .nii.gz
// extension is stripped as a unit.
func csvName(imageName string) string {
	name := strings.TrimSuffix(imageName, ".nii.gz")
	if name == imageName {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name + ".csv"
}

// Save writes the annotation set for an image, replacing any previous one.
func (s *Store) Save(imageName string, records []Record) error {
	path := filepath.Join(s.labelsDir, csvName(imageName))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create annotation file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"label", "x", "y", "z"}); err != nil {
		return fmt.Errorf("failed to write annotation header: %w", err)
	}
	for _, r := range records {
		row := []string{r.Label, strconv.Itoa(r.X), strconv.Itoa(r.Y), strconv.Itoa(r.Z)}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write annotation row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// Load reads the annotation set for an image. A missing file is not an
// error; it yields an empty set.
func (s *Store) Load(imageName string) ([]Record, error) {
	path := filepath.Join(s.labelsDir, csvName(imageName))
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open annotation file: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read annotation file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return []Record{}, nil
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 4 {
			return nil, fmt.Errorf("malformed annotation row in %s: %v", path, row)
		}
		x, errX := strconv.Atoi(row[1])
		y, errY := strconv.Atoi(row[2])
		z, errZ := strconv.Atoi(row[3])
		if errX != nil || errY != nil || errZ != nil {
			return nil, fmt.Errorf("non-integer coordinate in %s: %v", path, row)
		}
		records = append(records, Record{Label: row[0], X: x, Y: y, Z: z})
	}
	return records, nil
}

// ListAnnotated returns the image filenames that have a stored annotation
// set, sorted, with the .nii.gz extension restored.
func (s *Store) ListAnnotated() ([]string, error) {
	entries, err := os.ReadDir(s.labelsDir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read labels directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".csv")+".nii.gz")
	}
	sort.Strings(names)
	return names, nil
}
