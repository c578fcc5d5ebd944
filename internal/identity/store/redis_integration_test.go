//go:build integration

package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"idres/pkg/testutil/containers"
)

func TestRedisStore(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	n := 0
	suite.Run(t, &StoreContractSuite{newStore: func(*testing.T) Store {
		n++
		// Each test gets its own namespace on the shared container.
		return NewRedis(rc.Client, WithKeyPrefix(fmt.Sprintf("t%d:", n)))
	}})
}

func TestRedisStore_KeysAreReadable(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	st := NewRedis(rc.Client)
	if err := st.Save(ctx, nil, nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := rc.Client.Get(ctx, FieldsKey).Result()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "[]" {
		t.Fatalf("want [] got %q", got)
	}
}
