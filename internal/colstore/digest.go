package colstore

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainColumns prefixes the digest input. The version suffix allows the
// rendering to change without colliding with older digests.
const DomainColumns = "fextract/columns/v1"

// Digest returns the hex SHA-256 of the canonical rendering, computed as
// SHA256(domain + 0x00 + canonical JSON).
func (p *ParsedFile) Digest() string {
	return hashWithDomain(DomainColumns, p.MarshalCanonical())
}

func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
