// Package replay decodes and encodes replay buffers (replay.dat): a flat
// sequence of input-action records that runs to the end of the buffer.
//
// Each record is a one-byte action tag, the game tick, the player index as
// an opt_u16 and the action payload, all in the Replay profile. Positions
// in replays are always absolute.
package replay

import (
	"fmt"

	"github.com/arloliu/factosave/codec"
	"github.com/arloliu/factosave/errs"
	"github.com/arloliu/factosave/internal/options"
	"github.com/arloliu/factosave/stream"
)

// Record is one input action issued by a player at a tick.
type Record struct {
	Tick   uint32
	Player uint16
	Action Action
}

// Log is a decoded replay buffer.
type Log struct {
	Records []Record
}

// Append adds an action to the log.
func (l *Log) Append(tick uint32, player uint16, a Action) {
	l.Records = append(l.Records, Record{Tick: tick, Player: player, Action: a})
}

// Count returns how many records carry each action kind. Records without
// an action are not counted.
func (l *Log) Count() map[ActionKind]int {
	out := make(map[ActionKind]int)
	for _, r := range l.Records {
		if r.Action == nil {
			continue
		}
		out[r.Action.Kind()]++
	}

	return out
}

// LastTick returns the tick of the final record, or 0 for an empty log.
func (l *Log) LastTick() uint32 {
	if len(l.Records) == 0 {
		return 0
	}

	return l.Records[len(l.Records)-1].Tick
}

// Config holds the replay codec settings.
type Config struct {
	resolver codec.Resolver
}

// Option configures Decode and Encode.
type Option = options.Option[*Config]

// WithResolver checks content IDs in actions against r, typically the
// session of the save's level-init.dat. Without a resolver IDs are taken
// as they are.
func WithResolver(r codec.Resolver) Option {
	return options.New(func(c *Config) error {
		if r == nil {
			return fmt.Errorf("replay: nil resolver")
		}
		c.resolver = r

		return nil
	})
}

// Decode parses a replay buffer. Records run until the end of data.
//
// Parameters:
//   - data: replay.dat contents
//   - opts: WithResolver to check content IDs against a map session
//
// Returns:
//   - *Log: the records in wire order
//   - error: an *errs.Error with the offset and path (such as "records[3].tick")
func Decode(data []byte, opts ...Option) (*Log, error) {
	cfg := &Config{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	r := stream.NewReader(data)
	d := codec.NewDecoder(r, codec.ReplayProfile)
	if cfg.resolver != nil {
		d.SetResolver(cfg.resolver)
	}

	log := &Log{}
	for i := 0; !r.EOF(); i++ {
		rec, err := decodeRecord(d)
		if err != nil {
			return nil, fmt.Errorf("decode replay: %w", errs.InField(errs.InField(err, errs.Index(i)), "records"))
		}
		log.Records = append(log.Records, rec)
	}

	return log, nil
}

func decodeRecord(d *codec.Decoder) (Record, error) {
	kind, start, err := actionUnion.ReadTag(d)
	if err != nil {
		return Record{}, err
	}

	var rec Record
	if rec.Tick, err = codec.U32.Decode(d); err != nil {
		return Record{}, errs.InField(err, "tick")
	}
	if rec.Player, err = codec.OptU16.Decode(d); err != nil {
		return Record{}, errs.InField(err, "player")
	}
	if rec.Action, err = actionUnion.DecodeVariant(d, kind, start); err != nil {
		return Record{}, err
	}

	return rec, nil
}

// Encode serializes l.
func Encode(l *Log, opts ...Option) ([]byte, error) {
	cfg := &Config{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	w := stream.NewWriter()
	e := codec.NewEncoder(w, codec.ReplayProfile)
	if cfg.resolver != nil {
		e.SetResolver(cfg.resolver)
	}

	for i, rec := range l.Records {
		if err := encodeRecord(e, rec); err != nil {
			w.Release()
			return nil, fmt.Errorf("encode replay: %w", errs.InField(errs.InField(err, errs.Index(i)), "records"))
		}
	}

	return w.Finish(), nil
}

func encodeRecord(e *codec.Encoder, rec Record) error {
	kind, err := actionUnion.WriteTag(e, rec.Action)
	if err != nil {
		return err
	}
	if err := codec.U32.Encode(e, rec.Tick); err != nil {
		return err
	}
	if err := codec.OptU16.Encode(e, rec.Player); err != nil {
		return err
	}

	return actionUnion.EncodeVariant(e, kind, rec.Action)
}
