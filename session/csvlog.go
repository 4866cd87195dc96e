package session

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// StepRow is one row of the append-only gameplay log.
type StepRow struct {
	Step      uint64
	Timestamp time.Time
	Action    string
	Location  string
	X, Y      int
	Money     int
	Badges    []string
	Pokemons  []string // species names
	Score     float64
}

var csvHeader = []string{
	"step", "timestamp", "action", "location", "x", "y",
	"money", "badges", "pokemons", "score",
}

// AppendStep appends one row to gameplay_data.csv, writing the header
// first if the log is new. The file is only ever opened for append.
func (r *Record) AppendStep(row StepRow) error {
	path := filepath.Join(r.dir, logFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open step log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat step log: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("write log header: %w", err)
		}
	}
	if err := w.Write(encodeRow(row)); err != nil {
		return fmt.Errorf("write log row: %w", err)
	}
	w.Flush()
	return w.Error()
}

func encodeRow(row StepRow) []string {
	badges, _ := json.Marshal(row.Badges)
	pokemons, _ := json.Marshal(row.Pokemons)
	return []string{
		strconv.FormatUint(row.Step, 10),
		row.Timestamp.Format(time.RFC3339),
		row.Action,
		row.Location,
		strconv.Itoa(row.X),
		strconv.Itoa(row.Y),
		strconv.Itoa(row.Money),
		string(badges),
		string(pokemons),
		strconv.FormatFloat(row.Score, 'f', 2, 64),
	}
}

func decodeRow(rec []string) (StepRow, error) {
	if len(rec) != len(csvHeader) {
		return StepRow{}, fmt.Errorf("log row has %d fields, want %d", len(rec), len(csvHeader))
	}
	var row StepRow
	var err error
	if row.Step, err = strconv.ParseUint(rec[0], 10, 64); err != nil {
		return StepRow{}, fmt.Errorf("bad step %q: %w", rec[0], err)
	}
	row.Timestamp, _ = time.Parse(time.RFC3339, rec[1])
	row.Action = rec[2]
	row.Location = rec[3]
	row.X, _ = strconv.Atoi(rec[4])
	row.Y, _ = strconv.Atoi(rec[5])
	row.Money, _ = strconv.Atoi(rec[6])
	if rec[7] != "" {
		if err := json.Unmarshal([]byte(rec[7]), &row.Badges); err != nil {
			return StepRow{}, fmt.Errorf("bad badges %q: %w", rec[7], err)
		}
	}
	if rec[8] != "" {
		if err := json.Unmarshal([]byte(rec[8]), &row.Pokemons); err != nil {
			return StepRow{}, fmt.Errorf("bad pokemons %q: %w", rec[8], err)
		}
	}
	row.Score, _ = strconv.ParseFloat(rec[9], 64)
	return row, nil
}

// History reads the full step log in order. A missing log is an empty
// history, not an error.
func (r *Record) History() ([]StepRow, error) {
	f, err := os.Open(filepath.Join(r.dir, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open step log: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	var rows []StepRow
	first := true
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read step log: %w", err)
		}
		if first {
			first = false
			if len(rec) > 0 && rec[0] == "step" {
				continue
			}
		}
		row, err := decodeRow(rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LastStep recovers the resume step counter from the log tail. The
// second return is false when the log holds no rows.
func (r *Record) LastStep() (uint64, bool, error) {
	rows, err := r.History()
	if err != nil {
		return 0, false, err
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	return rows[len(rows)-1].Step, true, nil
}
