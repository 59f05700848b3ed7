package models

// TransferService delivers already-settled value to a recipient. A transfer
// hands control to arbitrary external code: it may fail, and it may attempt to
// call back into the engine before returning. The engine treats every call as
// a potential reentrancy vector and never mutates ledger state after it in the
// same operation except to record the outcome.
type TransferService interface {
	Transfer(to string, amount uint64) error
}
