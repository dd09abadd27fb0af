package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/sys/unix"

	"github.com/Cyrix126/bch-xmr-swap/swaperrors"
)

var (
	validate = validator.New()
	log      = logging.Logger("journal")
)

// Journal is the durable, hash-chained log for a single trade. It holds an
// exclusive advisory lock on its file for as long as it is open, per
// spec.md §5's "journal files use exclusive advisory file locks for the
// lifetime of a trade" rule.
type Journal struct {
	mu   sync.Mutex
	file *os.File
	path string

	lastSeq  uint64
	lastHash string
}

// Layout mirrors spec.md §6's persisted state layout.
type Layout struct {
	Root string
}

func (l Layout) ongoingDir() string     { return filepath.Join(l.Root, "trades", "ongoing") }
func (l Layout) completedDir() string   { return filepath.Join(l.Root, "trades", "completed") }
func (l Layout) quarantineDir() string  { return filepath.Join(l.Root, "trades", "quarantine") }
func (l Layout) logPath(tradeID string) string {
	return filepath.Join(l.ongoingDir(), tradeID+".log")
}

// Open opens (creating if necessary) the journal for tradeID under root,
// acquires its exclusive lock, and replays any existing records. If the
// lock is already held by another process, Open fails immediately: per
// spec.md, that means the trade is considered already running elsewhere.
func Open(layout Layout, tradeID string) (*Journal, []Record, error) {
	if err := os.MkdirAll(layout.ongoingDir(), 0o700); err != nil {
		return nil, nil, fmt.Errorf("failed to create ongoing trades dir: %w", err)
	}

	path := layout.logPath(tradeID)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open journal: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("journal already locked, trade may be running elsewhere: %w", err)
	}
	log.Debugf("opened journal for trade %s", tradeID)

	j := &Journal{file: f, path: path, lastHash: genesisHash}

	records, err := replay(f)
	if err != nil {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
		return nil, nil, err
	}

	if n := len(records); n > 0 {
		j.lastSeq = records[n-1].Seq
		j.lastHash = records[n-1].Hash
	}

	return j, records, nil
}

// replay reads every record, validating the hash chain as it goes.
// A break in the chain is reported as JournalCorruption rather than a
// plain read error, so the caller can route the trade to quarantine.
func replay(f *os.File) ([]Record, error) {
	if _, err := f.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("failed to seek journal: %w", err)
	}

	var records []Record
	prevHash := genesisHash

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, swaperrors.JournalCorruption("malformed record: %s", err)
		}

		if err := validate.Struct(rec); err != nil {
			return nil, swaperrors.JournalCorruption("invalid record shape: %s", err)
		}

		if rec.PrevHash != prevHash {
			log.Errorf("journal hash chain broken at seq %d", rec.Seq)
			return nil, swaperrors.JournalCorruption("hash chain broken at seq %d", rec.Seq)
		}

		wantHash, err := computeHash(rec.Seq, rec.PrevHash, rec.State, rec.Evidence)
		if err != nil {
			return nil, err
		}
		if wantHash != rec.Hash {
			log.Errorf("journal self-hash mismatch at seq %d", rec.Seq)
			return nil, swaperrors.JournalCorruption("self-hash mismatch at seq %d", rec.Seq)
		}

		records = append(records, rec)
		prevHash = rec.Hash
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan journal: %w", err)
	}

	return records, nil
}

// Append writes a new record, fsyncing before returning. The FSM must not
// act on anything the transition implies (e.g. broadcasting a tx) until
// Append has returned successfully.
func (j *Journal) Append(state string, evidence map[string]string) (Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	seq := j.lastSeq + 1

	hash, err := computeHash(seq, j.lastHash, state, evidence)
	if err != nil {
		return Record{}, err
	}

	rec := Record{Seq: seq, PrevHash: j.lastHash, State: state, Evidence: evidence, Hash: hash}

	if err := validate.Struct(rec); err != nil {
		return Record{}, fmt.Errorf("invalid record: %w", err)
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("failed to marshal record: %w", err)
	}
	line = append(line, '\n')

	if _, err := j.file.Write(line); err != nil {
		return Record{}, fmt.Errorf("failed to write record: %w", err)
	}
	if err := j.file.Sync(); err != nil {
		return Record{}, fmt.Errorf("failed to fsync journal: %w", err)
	}

	j.lastSeq = seq
	j.lastHash = hash

	log.Debugf("appended record seq=%d state=%s", seq, state)
	return rec, nil
}

// Close releases the advisory lock and closes the underlying file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_ = unix.Flock(int(j.file.Fd()), unix.LOCK_UN)
	return j.file.Close()
}

// Complete moves a terminated trade's journal from ongoing/ to completed/,
// per spec.md's "terminated trades are moved ... and are immutable
// thereafter" lifecycle rule. The caller must Close the journal first.
func Complete(layout Layout, tradeID string) error {
	if err := os.MkdirAll(layout.completedDir(), 0o700); err != nil {
		return fmt.Errorf("failed to create completed trades dir: %w", err)
	}

	src := layout.logPath(tradeID)
	dst := filepath.Join(layout.completedDir(), tradeID+".log")
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to archive journal: %w", err)
	}

	return nil
}

// Quarantine moves a trade whose journal failed hash-chain validation out
// of ongoing/ so it is never auto-recovered, per spec.md §4.5/§7.
func Quarantine(layout Layout, tradeID string) error {
	if err := os.MkdirAll(layout.quarantineDir(), 0o700); err != nil {
		return fmt.Errorf("failed to create quarantine dir: %w", err)
	}

	src := layout.logPath(tradeID)
	dst := filepath.Join(layout.quarantineDir(), tradeID+".log")
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to quarantine journal: %w", err)
	}

	return nil
}
