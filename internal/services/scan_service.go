// Package services orchestrates the scan: it fans storage roots out to a
// bounded worker pool, runs the segment pipeline strictly sequentially
// within each file, and pools the candidates. Every failure below this
// level is converted into "skip this unit, keep scanning"; resilience to
// damaged data is the whole point of the tool.
package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/golang/snappy"

	"github.com/carvetools/vaultcarve/internal/codec"
	"github.com/carvetools/vaultcarve/internal/parsers/wal"
	"github.com/carvetools/vaultcarve/internal/profile"
	"github.com/carvetools/vaultcarve/internal/sigscan"
	"github.com/carvetools/vaultcarve/internal/types"
)

// ScanConfig controls the scan service.
type ScanConfig struct {
	// Scanner configures the signature scanner.
	Scanner sigscan.Config
	// Workers bounds the pool processing files concurrently. Zero or
	// negative selects a default based on the machine.
	Workers int
	// MaxFileSize caps how large a file the raw and framed scans will
	// slurp. Zero selects the default (256 MiB).
	MaxFileSize int64
}

const defaultMaxFileSize = 256 << 20

// ScanStats counts what the pipeline saw. Purely informational.
type ScanStats struct {
	Roots             int `json:"roots"`
	Segments          int `json:"segments"`
	Records           int `json:"records"`
	Entries           int `json:"entries"`
	TruncatedSegments int `json:"truncated_segments"`
	CorruptBlocks     int `json:"corrupt_blocks"`
	UnsupportedBlocks int `json:"unsupported_blocks"`
	OrphanFragments   int `json:"orphan_fragments"`
	DiscardedEntries  int `json:"discarded_entries"`
	SqliteFiles       int `json:"sqlite_files"`
	FramedFiles       int `json:"framed_files"`
	RawFiles          int `json:"raw_files"`
	SkippedFiles      int `json:"skipped_files"`
}

func (s *ScanStats) add(o ScanStats) {
	s.Segments += o.Segments
	s.Records += o.Records
	s.Entries += o.Entries
	s.TruncatedSegments += o.TruncatedSegments
	s.CorruptBlocks += o.CorruptBlocks
	s.UnsupportedBlocks += o.UnsupportedBlocks
	s.OrphanFragments += o.OrphanFragments
	s.DiscardedEntries += o.DiscardedEntries
	s.SqliteFiles += o.SqliteFiles
	s.FramedFiles += o.FramedFiles
	s.RawFiles += o.RawFiles
	s.SkippedFiles += o.SkippedFiles
}

// ScanResult is the pooled outcome of one run.
type ScanResult struct {
	Candidates []sigscan.Candidate
	Stats      ScanStats
}

// ScanService runs the recovery pipeline over storage roots.
type ScanService struct {
	cfg     ScanConfig
	scanner *sigscan.Scanner
	logf    func(format string, args ...interface{})
}

// NewScanService creates a scan service. logf may be nil to discard
// progress logging.
func NewScanService(cfg ScanConfig, logf func(format string, args ...interface{})) *ScanService {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
		if cfg.Workers > 8 {
			cfg.Workers = 8
		}
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = defaultMaxFileSize
	}
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &ScanService{
		cfg:     cfg,
		scanner: sigscan.NewScanner(cfg.Scanner),
		logf:    logf,
	}
}

// fileStrategy selects how one file is scanned.
type fileStrategy int

const (
	strategySegment fileStrategy = iota // LevelDB-style log segment
	strategyRaw                         // raw byte fallback (table files)
	strategySqlite                      // IndexedDB sqlite store
	strategyFramed                      // snappy framed stream
)

type scanJob struct {
	path     string
	strategy fileStrategy
}

type jobResult struct {
	candidates []sigscan.Candidate
	stats      ScanStats
}

// Scan processes every root and pools the candidates. Directories are
// independent; their results carry no ordering guarantee. The scan can be
// aborted between files through ctx; candidates already pooled remain
// valid and are returned alongside ctx's error.
func (s *ScanService) Scan(ctx context.Context, roots []profile.StorageRoot) (*ScanResult, error) {
	result := &ScanResult{Stats: ScanStats{Roots: len(roots)}}

	var jobs []scanJob
	for _, root := range roots {
		jobs = append(jobs, s.planRoot(root)...)
	}
	if len(jobs) == 0 {
		return result, ctx.Err()
	}

	workers := s.cfg.Workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobCh := make(chan scanJob)
	resultCh := make(chan jobResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				// Cooperative cancellation checkpoint between files.
				if ctx.Err() != nil {
					continue
				}
				resultCh <- s.runJob(job)
			}
		}()
	}

	go func() {
		defer close(jobCh)
		for _, job := range jobs {
			jobCh <- job
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	for res := range resultCh {
		result.Candidates = append(result.Candidates, res.candidates...)
		result.Stats.add(res.stats)
	}

	return result, ctx.Err()
}

// planRoot enumerates the scannable files of one root according to its
// kind. Unreadable entries are skipped silently.
func (s *ScanService) planRoot(root profile.StorageRoot) []scanJob {
	switch root.Kind {
	case profile.KindChromiumExtension:
		return s.planLevelDBDir(root.Path)
	case profile.KindFirefoxProfile:
		return s.planWalk(root.Path, false)
	default:
		return append(s.planLevelDBDir(root.Path), s.planWalk(root.Path, true)...)
	}
}

// planLevelDBDir picks up log segments and, as a raw fallback, table files
// in one directory.
func (s *ScanService) planLevelDBDir(dir string) []scanJob {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var jobs []scanJob
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".log":
			jobs = append(jobs, scanJob{path: path, strategy: strategySegment})
		case ".ldb", ".sst":
			jobs = append(jobs, scanJob{path: path, strategy: strategyRaw})
		}
	}
	return jobs
}

// planWalk recurses a profile directory for sqlite stores and snappy-framed
// files. When leveldb is set, nested LevelDB storage directories (e.g.
// storage under a user-supplied root) contribute segment jobs too.
func (s *ScanService) planWalk(dir string, leveldb bool) []scanJob {
	var jobs []scanJob
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() == 0 {
			return nil
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".sqlite":
			jobs = append(jobs, scanJob{path: path, strategy: strategySqlite})
			return nil
		case ".log":
			if leveldb {
				jobs = append(jobs, scanJob{path: path, strategy: strategySegment})
				return nil
			}
		case ".ldb", ".sst":
			if leveldb {
				jobs = append(jobs, scanJob{path: path, strategy: strategyRaw})
				return nil
			}
		}

		if info.Size() <= s.cfg.MaxFileSize && sniffFramedFile(path) {
			jobs = append(jobs, scanJob{path: path, strategy: strategyFramed})
		}
		return nil
	})
	return jobs
}

func (s *ScanService) runJob(job scanJob) jobResult {
	switch job.strategy {
	case strategySegment:
		return s.scanSegment(job.path)
	case strategySqlite:
		return s.scanSqlite(job.path)
	case strategyFramed:
		return s.scanFramed(job.path)
	default:
		return s.scanRaw(job.path)
	}
}

// scanSegment runs the core pipeline over one log segment: physical records
// in file order, per-record decompression, reassembly, signature scan. One
// bad block never aborts the segment.
func (s *ScanService) scanSegment(path string) jobResult {
	var res jobResult
	res.stats.Segments = 1

	reader, err := wal.OpenSegment(path)
	if err != nil {
		s.logf("skipping segment %s: %v", path, err)
		res.stats.SkippedFiles = 1
		return res
	}
	defer reader.Close()

	decoder := codec.NewDecoder()
	reasm := wal.NewReassembler()

	for {
		rec, err := reader.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logf("segment %s: read stopped: %v", path, err)
			}
			break
		}
		res.stats.Records++

		payload, err := decoder.Decode(rec.Codec, rec.Payload)
		switch {
		case errors.Is(err, types.ErrUnsupportedCodec):
			// A short signature can still be byte-visible in compressed
			// data; scan the raw bytes rather than dropping the record.
			res.stats.UnsupportedBlocks++
			res.candidates = append(res.candidates,
				s.scanBuffer(path, rec.Payload, rec.LowConfidence, true)...)
			continue
		case errors.Is(err, types.ErrCorruptBlock):
			res.stats.CorruptBlocks++
			s.logf("segment %s: corrupt block at offset %d, continuing", path, rec.Offset)
			continue
		case err != nil:
			res.stats.CorruptBlocks++
			continue
		}

		entry, ok := reasm.Feed(rec, payload)
		if !ok {
			continue
		}
		res.stats.Entries++
		res.candidates = append(res.candidates,
			s.scanBuffer(path, entry.Payload, entry.LowConfidence, false)...)
	}

	if reader.Truncated() {
		res.stats.TruncatedSegments++
		s.logf("segment %s: truncated tail, kept %d records", path, reader.Records())
	}
	res.stats.OrphanFragments += reasm.Orphans()
	res.stats.DiscardedEntries += reasm.Discarded()
	return res
}

// scanSqlite scans the object_data values of an IndexedDB sqlite file.
// Values are snappy-compressed; ones that fail to decode are scanned raw.
func (s *ScanService) scanSqlite(path string) jobResult {
	var res jobResult

	store, err := OpenIndexedDB(path)
	if err != nil {
		res.stats.SkippedFiles = 1
		return res
	}
	defer store.Close()

	ok, err := store.HasObjectData()
	if err != nil || !ok {
		return res
	}
	res.stats.SqliteFiles = 1

	store.Payloads(func(value []byte) {
		decoded, err := snappy.Decode(nil, value)
		if err != nil {
			res.candidates = append(res.candidates, s.scanBuffer(path, value, false, true)...)
			return
		}
		res.candidates = append(res.candidates, s.scanBuffer(path, decoded, false, false)...)
	})
	return res
}

// scanFramed decompresses one snappy framed-stream file and scans it.
func (s *ScanService) scanFramed(path string) jobResult {
	var res jobResult

	file, err := os.Open(path)
	if err != nil {
		res.stats.SkippedFiles = 1
		return res
	}
	defer file.Close()

	decoded, err := codec.DecodeFramed(file)
	if err != nil {
		res.stats.SkippedFiles = 1
		return res
	}
	res.stats.FramedFiles = 1
	res.candidates = s.scanBuffer(path, decoded, false, false)
	return res
}

// scanRaw reads a file wholesale and scans its undecoded bytes. Used for
// table files whose block layout the tool does not parse.
func (s *ScanService) scanRaw(path string) jobResult {
	var res jobResult

	info, err := os.Stat(path)
	if err != nil || info.Size() > s.cfg.MaxFileSize {
		res.stats.SkippedFiles = 1
		return res
	}

	data, err := os.ReadFile(path)
	if err != nil {
		res.stats.SkippedFiles = 1
		return res
	}
	res.stats.RawFiles = 1
	res.candidates = s.scanBuffer(path, data, false, true)
	return res
}

func (s *ScanService) scanBuffer(path string, buf []byte, lowConfidence, raw bool) []sigscan.Candidate {
	found := s.scanner.Scan(path, buf)
	for i := range found {
		found[i].LowConfidence = found[i].LowConfidence || lowConfidence
		found[i].RawFallback = raw
	}
	if len(found) > 0 {
		s.logf("%s: %d candidate(s)", path, len(found))
	}
	return found
}

func sniffFramedFile(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	head := make([]byte, len(codec.FramedMagic))
	if _, err := io.ReadFull(file, head); err != nil {
		return false
	}
	return codec.SniffFramed(head)
}
