// Package reminders provides the Entity Store: durable keyed storage for
// reminder records with no business logic.
//
// # Contract
//
// Store exposes four operations: GetAll, GetByID, Upsert and DeleteAll.
// Upsert is keyed by id: an existing record is replaced, otherwise a new one
// is appended. GetByID signals a missing record with common.ErrorNotFound
// (match it with errors.Is); every other error is a store fault.
//
// # Implementations
//
//   - SQLStore over dbx.DBTX, in SQLite (NewSQLiteStore) and PostgreSQL
//     (NewPostgresStore) flavours. Both keep insertion order on GetAll; an
//     upsert of an existing id keeps its position.
//   - MemoryStore, an in-memory double with fault injection for tests.
//
// Typical Usage
//
//	store := reminders.NewSQLiteStore(db)
//	_ = store.Upsert(ctx, &r)
//	all, _ := store.GetAll(ctx)
//	one, err := store.GetByID(ctx, id)
//	if errors.Is(err, common.ErrorNotFound) { ... }
package reminders
