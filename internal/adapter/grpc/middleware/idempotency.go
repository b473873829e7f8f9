package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/iho/bankrecon/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the metadata key for idempotency
	IdempotencyKeyHeader = "x-idempotency-key"
)

// IdempotencyStore defines the minimal contract needed for idempotency handling.
type IdempotencyStore interface {
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (exists bool, cachedResponse []byte, err error)
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// storedCall is what is kept under an idempotency key once the call succeeded.
type storedCall struct {
	RequestHash string `json:"request_hash"`
	Response    []byte `json:"response"`
}

var deterministic = proto.MarshalOptions{Deterministic: true}

// IdempotencyInterceptor replays the response of a completed call that
// carried the same idempotency key and request. readOnly lists methods that
// are never deduplicated.
func IdempotencyInterceptor(store IdempotencyStore, ttl time.Duration, readOnly ...string) grpc.UnaryServerInterceptor {
	if ttl <= 0 {
		ttl = usecase.IdempotencyKeyTTL
	}
	skip := make(map[string]bool, len(readOnly))
	for _, m := range readOnly {
		skip[m] = true
	}

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if store == nil || skip[info.FullMethod] {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return handler(ctx, req)
		}

		keys := md.Get(IdempotencyKeyHeader)
		if len(keys) == 0 {
			return handler(ctx, req)
		}

		idempotencyKey := keys[0]
		if idempotencyKey == "" {
			return nil, status.Error(codes.InvalidArgument, "idempotency key cannot be empty")
		}

		cacheKey := fmt.Sprintf("grpc:%s:%s", info.FullMethod, idempotencyKey)

		requestHash, err := hashRequest(req)
		if err != nil {
			return nil, status.Error(codes.Internal, "failed to generate request hash")
		}

		exists, cached, err := store.CheckAndSet(ctx, cacheKey, nil, ttl)
		if err != nil {
			// Degraded mode: run without deduplication
			return handler(ctx, req)
		}

		if exists {
			return replay(cached, requestHash)
		}

		resp, err := handler(ctx, req)
		if err != nil {
			// Don't cache errors - allow retry
			store.Release(ctx, cacheKey)
			return resp, err
		}

		if msg, ok := resp.(proto.Message); ok {
			if payload, err := deterministic.Marshal(msg); err == nil {
				if stored, err := json.Marshal(storedCall{RequestHash: requestHash, Response: payload}); err == nil {
					store.Update(ctx, cacheKey, stored, ttl)
				}
			}
		}

		return resp, nil
	}
}

func replay(cached []byte, requestHash string) (any, error) {
	if cached == nil || string(cached) == usecase.IdempotencyPendingMarker {
		return nil, status.Error(codes.Aborted, "request with this idempotency key is in progress")
	}

	var call storedCall
	if err := json.Unmarshal(cached, &call); err != nil {
		return nil, status.Error(codes.Internal, "corrupt idempotency record")
	}

	if call.RequestHash != requestHash {
		return nil, status.Error(codes.InvalidArgument, "idempotency key reused with different request body")
	}

	out := &structpb.Struct{}
	if err := proto.Unmarshal(call.Response, out); err != nil {
		return nil, status.Error(codes.Internal, "corrupt idempotency record")
	}

	return out, nil
}

// hashRequest generates a SHA-256 hash of the request for fingerprinting
func hashRequest(req any) (string, error) {
	if protoMsg, ok := req.(proto.Message); ok {
		data, err := deterministic.Marshal(protoMsg)
		if err != nil {
			return "", err
		}

		hash := sha256.Sum256(data)
		return hex.EncodeToString(hash[:]), nil
	}

	data := []byte(fmt.Sprintf("%+v", req))
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}
