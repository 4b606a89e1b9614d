package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mmuslimabdulj/calcvault/internal/domain"
)

// EncodeSnapshot serializes the full application state
func EncodeSnapshot(s domain.AppState) ([]byte, error) {
	if s.Users == nil {
		s.Users = []domain.User{}
	}
	if s.Messages == nil {
		s.Messages = []domain.Message{}
	}
	return json.Marshal(s)
}

// DecodeSnapshot parses a blob and re-merges the built-in accounts
func DecodeSnapshot(blob []byte) (domain.AppState, error) {
	var s domain.AppState
	if err := json.Unmarshal(blob, &s); err != nil {
		return domain.AppState{}, fmt.Errorf("decode snapshot: %w", err)
	}
	for i := range s.Messages {
		if s.Messages[i].Reactions == nil {
			s.Messages[i].Reactions = []domain.Reaction{}
		}
	}
	return domain.MergeBuiltins(s), nil
}

// LoadSnapshot reads the state stored under key. A missing blob yields a
// fresh state with found=false.
func LoadSnapshot(ctx context.Context, a Adapter, key string) (state domain.AppState, found bool, err error) {
	blob, err := a.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return domain.NewAppState(), false, nil
	}
	if err != nil {
		return domain.NewAppState(), false, err
	}
	state, err = DecodeSnapshot(blob)
	if err != nil {
		return domain.NewAppState(), false, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return state, true, nil
}

// PreserveSnapshot copies the raw blob under key to key.corrupt-<suffix> so
// an unreadable snapshot survives the next overwrite. It returns the backup key.
func PreserveSnapshot(ctx context.Context, a Adapter, key, suffix string) (string, error) {
	blob, err := a.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	backup := key + ".corrupt-" + suffix
	if err := a.Set(ctx, backup, blob); err != nil {
		return "", fmt.Errorf("write %s: %w", backup, err)
	}
	return backup, nil
}

// SaveSnapshot overwrites the blob under key and returns the written size
func SaveSnapshot(ctx context.Context, a Adapter, key string, s domain.AppState) (int, error) {
	blob, err := EncodeSnapshot(s)
	if err != nil {
		return 0, err
	}
	if err := a.Set(ctx, key, blob); err != nil {
		return 0, err
	}
	return len(blob), nil
}
