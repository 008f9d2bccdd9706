// Package fingerprint calcula o digest do pacote de código no mesmo formato
// que a AWS Lambda reporta em CodeSha256.
package fingerprint

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/raywall/terraform-provider-lambdasync/pkg/faults"
)

// Digest retorna o SHA-256 do conteúdo codificado em base64 padrão.
func Digest(b []byte) string {
	sum := sha256.Sum256(b)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// File lê o arquivo inteiro e devolve o conteúdo junto com o seu digest.
func File(path string) ([]byte, string, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, "", faults.NewTypedError(faults.IOError, fmt.Sprintf("reading code package %s", path), err)
	}
	return bs, Digest(bs), nil
}
