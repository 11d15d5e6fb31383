// Copyright (C) 2025 PakarTani (dev@pakartani.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// keyPrefix sorts entries by timestamp so iteration in reverse yields
// newest first.
const keyPrefix = "cons:"

// ConclusionSummary is the part of a diagnosis worth keeping in the log.
type ConclusionSummary struct {
	Diagnosis      string  `json:"diagnosis"`
	CF             float64 `json:"cf"`
	Interpretation string  `json:"cf_interpretation"`
}

// Entry is one completed consultation.
type Entry struct {
	ID          string              `json:"id"`
	Timestamp   time.Time           `json:"timestamp"`
	Fase        string              `json:"fase,omitempty"`
	Symptoms    map[string]float64  `json:"symptoms"`
	Conclusions []ConclusionSummary `json:"conclusions"`
	RulesUsed   []string            `json:"rules_used"`
}

// Summary aggregates the whole consultation log.
type Summary struct {
	TotalConsultations    int            `json:"total_consultations"`
	UniqueDiagnoses       int            `json:"unique_diagnoses"`
	AverageCF             float64        `json:"average_cf"`
	MostCommonDiagnosis   string         `json:"most_common_diagnosis,omitempty"`
	DiagnosisDistribution map[string]int `json:"diagnosis_distribution"`
}

// Store is the append-only consultation log.
type Store struct {
	db *badger.DB
}

// Open opens the consultation log with the given configuration.
// Call Close when done.
func Open(cfg Config) (*Store, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append records a consultation. A blank ID gets "CONS-<uuid>", a zero
// timestamp gets the current time. Returns the stored entry.
func (s *Store) Append(ctx context.Context, entry Entry) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	if entry.ID == "" {
		entry.ID = "CONS-" + uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return Entry{}, fmt.Errorf("encode consultation: %w", err)
	}

	key := fmt.Sprintf("%s%020d:%s", keyPrefix, entry.Timestamp.UnixNano(), entry.ID)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), payload)
	})
	if err != nil {
		return Entry{}, fmt.Errorf("store consultation: %w", err)
	}
	return entry, nil
}

// List returns consultations newest first, at most limit entries.
// limit <= 0 returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []Entry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration needs a seek key past the prefix range.
		seek := append([]byte(keyPrefix), 0xFF)
		for it.Seek(seek); it.ValidForPrefix([]byte(keyPrefix)); it.Next() {
			if limit > 0 && len(entries) >= limit {
				break
			}
			err := it.Item().Value(func(val []byte) error {
				var entry Entry
				if err := json.Unmarshal(val, &entry); err != nil {
					return fmt.Errorf("decode consultation: %w", err)
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Clear removes the whole consultation log.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.DropPrefix([]byte(keyPrefix))
}

// Summarize aggregates the log into a summary report. Only the top
// conclusion of each consultation counts toward the distribution and
// the average.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	entries, err := s.List(ctx, 0)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		TotalConsultations:    len(entries),
		DiagnosisDistribution: make(map[string]int),
	}

	var cfSum float64
	var cfCount int
	for _, entry := range entries {
		if len(entry.Conclusions) == 0 {
			continue
		}
		top := entry.Conclusions[0]
		summary.DiagnosisDistribution[top.Diagnosis]++
		cfSum += top.CF
		cfCount++
	}

	summary.UniqueDiagnoses = len(summary.DiagnosisDistribution)
	if cfCount > 0 {
		summary.AverageCF = cfSum / float64(cfCount)
	}

	best := 0
	for diagnosis, count := range summary.DiagnosisDistribution {
		if count > best || (count == best && diagnosis < summary.MostCommonDiagnosis) {
			best = count
			summary.MostCommonDiagnosis = diagnosis
		}
	}
	return summary, nil
}
