package mongo

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"staybook/internal/domain/shared/fault"
)

const codeWriteConflict = 112

// classify maps driver failures onto the engine taxonomy. Write conflicts and
// transient transaction errors mean another transaction touched the same
// document; the whole unit is safe to re-run.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isContention(err) {
		return fmt.Errorf("%w: %v", fault.ErrConcurrentUpdate, err)
	}
	var fe *fault.Error
	if errors.As(err, &fe) {
		return err
	}
	return fault.Wrap(fault.KindInternal, "mongo: storage failure", err)
}

func isContention(err error) bool {
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorLabel("TransientTransactionError") || se.HasErrorCode(codeWriteConflict)
	}
	return false
}
