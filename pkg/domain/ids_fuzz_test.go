package domain

import "testing"

// FuzzParseRunID checks that parsing never panics on arbitrary input and
// that any accepted value survives a parse/format round trip.
func FuzzParseRunID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseRunID(input)
		if err != nil {
			return
		}
		reparsed, err := ParseRunID(id.String())
		if err != nil {
			t.Fatalf("accepted value failed to reparse: %v", err)
		}
		if reparsed != id {
			t.Fatalf("round trip changed the id: %v != %v", reparsed, id)
		}
	})
}
