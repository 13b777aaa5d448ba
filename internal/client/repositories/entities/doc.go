// Package entities provides the client-side persistence layer for holidays,
// recipients and gifts.
//
// All three collections share one Repository implementation parameterised by
// models.EntityType. A row keeps the identity and timestamp columns, the
// foreign keys needed for lookups, and the domain fields as an encoded
// protobuf Struct in the data column.
//
// UpsertLWW is the write path of the sync engine: it reads the stored copy and
// applies models.ResolveLWW inside a single transaction. Domain services use
// Put, which overwrites unconditionally.
//
// Typical Usage
//
//	repo := entities.NewSQLiteRepository(db, models.EntityGifts)
//	_ = repo.Put(ctx, gift.Record())
//	list, _ := repo.ListBy(ctx, models.FieldRecipientID, recipientID)
//	outcome, _ := repo.UpsertLWW(ctx, remoteRecord)
package entities
