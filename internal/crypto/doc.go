// Package crypto provides PIN comparison for doorlock.
//
// A deployment PIN is configured either in plain form or as a hash:
//   - Plain PINs are compared in constant time
//   - Hashed PINs use PBKDF2-HMAC-SHA256 with a 16-byte random salt
//     and 210,000 iterations by default
//
// Hashes are encoded as pbkdf2-sha256$<iterations>$<salt hex>$<key hex>
// so they can be pasted into the pin_hash setting.
package crypto
