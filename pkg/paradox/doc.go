// Package paradox reads Paradox table (.DB) files.
//
// A file starts with a fixed header, followed by the field directory, the
// table name, the field names and the sort order name. Data blocks of
// MaxTableSize kilobytes fill the rest of the file. Each block starts with a
// six byte header whose last word is the size of the record data minus one
// record; a negative value marks an empty block.
//
// Decoding is strict: any structural inconsistency fails the whole load with
// an error matching ErrMalformed. Encrypted tables are refused.
//
//	db, err := paradox.Open(ctx, "CUSTOMER.DB")
//	if err != nil {
//		return err
//	}
//	for _, rec := range db.Records {
//		fmt.Println(rec)
//	}
//
// Tables keyed by an autoincrement first field can be loaded incrementally
// with WithResumeFrom. Blocks are scanned newest first and the scan stops at
// the first record whose key is below the resume key, so records appended
// since the last load are read without touching the rest of the file.
package paradox
