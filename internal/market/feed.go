package market

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/stagiralabs/agora-go/internal/asset"
)

// feedValidate checks document-level constraints after decoding
var feedValidate = validator.New()

// Resolution is the wire form of one target status: the resolution time as a
// canonical rational string, the resolver omitted for anonymous resolutions.
type Resolution struct {
	Time     *big.Rat
	Resolver *string
}

// resolutionJSON is the serialized shape of a Resolution
type resolutionJSON struct {
	Time     string  `json:"time"`
	Resolver *string `json:"resolver,omitempty"`
}

// MarshalJSON implements json.Marshaler with rational times as strings
func (r *Resolution) MarshalJSON() ([]byte, error) {
	return json.Marshal(resolutionJSON{
		Time:     asset.FormatRat(r.Time),
		Resolver: r.Resolver,
	})
}

// UnmarshalJSON implements json.Unmarshaler, rejecting non-rational times
func (r *Resolution) UnmarshalJSON(data []byte) error {
	var wire resolutionJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	t, err := asset.ParseRat(wire.Time)
	if err != nil {
		return fmt.Errorf("resolution time: %w", err)
	}
	r.Time = t
	r.Resolver = wire.Resolver
	return nil
}

// Feed is a point-in-time view of the market: a watermark and the status of
// every covered target. A nil map entry means the target is known unresolved.
type Feed struct {
	Watermark *big.Rat               `json:"watermark" validate:"required"`
	Targets   map[string]*Resolution `json:"targets"`
}

// feedJSON is the serialized shape of a Feed
type feedJSON struct {
	Watermark string                 `json:"watermark"`
	Targets   map[string]*Resolution `json:"targets"`
}

// MarshalJSON implements json.Marshaler with the watermark as a rational string
func (f *Feed) MarshalJSON() ([]byte, error) {
	return json.Marshal(feedJSON{
		Watermark: asset.FormatRat(f.Watermark),
		Targets:   f.Targets,
	})
}

// UnmarshalJSON implements json.Unmarshaler. A missing watermark is left nil
// for Validate to report; a malformed one fails here.
func (f *Feed) UnmarshalJSON(data []byte) error {
	var wire feedJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	f.Watermark = nil
	if wire.Watermark != "" {
		w, err := asset.ParseRat(wire.Watermark)
		if err != nil {
			return fmt.Errorf("feed watermark: %w", err)
		}
		f.Watermark = w
	}
	f.Targets = wire.Targets
	if f.Targets == nil {
		f.Targets = make(map[string]*Resolution)
	}
	return nil
}

// Validate checks the decoded document against its constraints
func (f *Feed) Validate() error {
	return feedValidate.Struct(f)
}

// Load reads and validates a resolution feed from a JSON file
func Load(path string) (*Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	feed, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", path, err)
	}
	return feed, nil
}

// Parse decodes and validates a resolution feed from JSON bytes
func Parse(data []byte) (*Feed, error) {
	var feed Feed
	if err := json.Unmarshal(data, &feed); err != nil {
		return nil, err
	}
	if err := feed.Validate(); err != nil {
		return nil, fmt.Errorf("invalid feed: %w", err)
	}
	return &feed, nil
}

// Snapshot converts the feed targets into the form the claim algebra consumes
func (f *Feed) Snapshot() asset.Snapshot {
	snap := make(asset.Snapshot, len(f.Targets))
	for target, res := range f.Targets {
		if res == nil {
			snap[target] = nil
			continue
		}
		snap[target] = &asset.Resolution{
			Time:     res.Time,
			Resolver: res.Resolver,
		}
	}
	return snap
}

// MissingTargets reports every target the claim references but the feed does
// not cover, sorted for stable output.
func MissingTargets(f *Feed, a asset.Asset) []string {
	var missing []string
	for target := range asset.ReferencedTargets(a) {
		if _, ok := f.Targets[target]; !ok {
			missing = append(missing, target)
		}
	}
	sort.Strings(missing)
	return missing
}
