// Package testutil はテスト用の外部依存のセットアップを提供する。
package testutil

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	redismodule "github.com/testcontainers/testcontainers-go/modules/redis"
)

// SetupRedisContainer はRedisコンテナを起動して接続済みのクライアントを返す。
// Dockerが利用できない環境ではテストをスキップする。
func SetupRedisContainer(ctx context.Context, t *testing.T) (*redis.Client, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("shortモードのためRedisコンテナを使うテストをスキップします")
	}

	defer func() {
		if r := recover(); r != nil {
			t.Skipf("Redisコンテナを起動できません: %v", r)
		}
	}()

	container, err := redismodule.Run(ctx, "redis:8-alpine")
	if err != nil {
		t.Skipf("Redisコンテナを起動できません: %v", err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Skipf("Redisのエンドポイントを取得できません: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: endpoint})

	cleanup := func() {
		if err := client.Close(); err != nil {
			t.Logf("Redisクライアントのクローズに失敗しました: %v", err)
		}
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Redisコンテナの停止に失敗しました: %v", err)
		}
	}
	return client, cleanup
}
