/*
Package linestore stores records as numbered lines in a single text file.

Every line in the file has the form:

	N-)payload

where N is the 1-based position of the line in the file. The numbers are a
position cache, not an identity: after every Append, Edit and Delete the
numbers in the file are exactly 1..count in physical order.

	s := linestore.New("data/property_records.txt")
	if err := s.Append("Property ID:1 / Address:Main St 5"); err != nil {
		return err
	}
	lines, err := s.ReadLines()

Every operation opens the file, does its work and closes it before
returning. Rewrites (WriteInitial, Edit, Delete) go through a temporary
file that is renamed over the original, so a failed write leaves the
previous content intact.

Errors fall into 3 groups:
  - *IOError for failures of the underlying file (use IsNotExist to detect
    a file that was never created)
  - ErrInvalidLineNumber when a line number is outside of 1..count
  - ErrInvalidText when text would break the one-record-per-line format
*/
package linestore
