package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrTimeRange is returned by NewAt for a time a ULID cannot encode.
var ErrTimeRange = errors.New("time outside ULID range")

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	// Seed a PRNG from crypto/rand so ULID entropy is unpredictable.
	// ulid.Monotonic keeps IDs generated within the same millisecond
	// lexicographically increasing.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a ULID string (time-sortable identifier).
//
// A supervisor run stamps one as its session ID, and the SQLite journal
// keys every entry row with one.
func New() string {
	id, err := NewAt(time.Now())
	if err != nil {
		// The wall clock is always inside the ULID range, so this only
		// happens if the monotonic counter overflows within a millisecond.
		panic(err)
	}
	return id
}

// NewAt returns a ULID whose timestamp component is t. Times before the
// Unix epoch, including the zero time.Time, and times past year 10889 have
// no ULID encoding and yield ErrTimeRange.
func NewAt(t time.Time) (string, error) {
	ms := t.UnixMilli()
	if ms < 0 || uint64(ms) > ulid.MaxTime() {
		return "", fmt.Errorf("%w: %s", ErrTimeRange, t.UTC().Format(time.RFC3339))
	}

	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(uint64(ms), mono)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Time returns the creation time encoded in a ULID string.
func Time(s string) (time.Time, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(id.Time()).UTC(), nil
}
