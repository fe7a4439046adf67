// Package password implements the credential hasher capability with Argon2id
// and scrypt backends.
//
// # Output format
//
// Hashes are encoded in PHC string format, so verification never needs
// externally stored parameters:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//	$scrypt$ln=<log2 N>,r=<r>,p=<p>$<salt>$<hash>
//
// Both backends compare digests with crypto/subtle so verification time does
// not depend on how close the guess was.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Secret policy (minimum
// length, reuse rules) is enforced by the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve secrets. Callers supply plaintext and receive hashes.
//   - Import any other authcore package.
//   - Log plaintext secrets or derived keys.
package password
