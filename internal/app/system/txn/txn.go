// Package txn runs multi-document operations atomically where the deployment
// allows it.
//
// Usage:
//
//	err := txn.Run(ctx, db, log, func(ctx context.Context) error {
//	    if _, err := files.UpdateMany(ctx, ...); err != nil {
//	        return err
//	    }
//	    _, err := categories.UpdateOne(ctx, ...)
//	    return err
//	})
//
// On a standalone MongoDB (no replica set) the function runs once without a
// transaction instead, so callers get best-effort atomicity everywhere.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Func is the unit of work. The context is a mongo.SessionContext when a
// transaction is active; every store call inside must use it.
type Func func(ctx context.Context) error

// Run executes fn inside a MongoDB transaction if possible, falling back to
// a plain call when transactions are not supported. log may be nil.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn Func) error {
	session, err := db.Client().StartSession()
	if err != nil {
		warn(log, "failed to start session, running without transaction", err)
		return fn(ctx)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		warn(log, "transactions not supported, running without transaction", err)
		return fn(ctx)
	}
	return err
}

func warn(log *zap.Logger, msg string, err error) {
	if log != nil {
		log.Warn(msg, zap.Error(err))
	}
}

// IsNotSupported reports whether err means the deployment cannot run
// multi-document transactions.
//
// Known error codes:
//   - 20: IllegalOperation ("only allowed on a replica set member or mongos")
//   - 51: IllegalOperation (DocumentDB)
//   - 263: OperationNotSupportedInTransaction
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case 20, 51, 263:
			return true
		}
	}

	// Message heuristics; two hits are required to avoid false positives.
	s := strings.ToLower(err.Error())
	hits := 0
	for _, kw := range []string{"transaction", "replica set", "session", "not supported", "illegal operation"} {
		if strings.Contains(s, kw) {
			hits++
		}
	}
	return hits >= 2
}
