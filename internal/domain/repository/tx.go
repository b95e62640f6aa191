package repository

import "context"

// TxKey 事务上下文键
type TxKey struct{}

// TxManager 事务边界抽象，由持久化层实现
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
