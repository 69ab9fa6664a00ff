package storage

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateProof(t *testing.T) {
	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")
	buf, mime, err := ValidateProof(bytes.NewReader(pdf))
	require.NoError(t, err)
	require.Equal(t, "application/pdf", mime)
	require.Equal(t, len(pdf), buf.Len())
	require.Equal(t, ".pdf", ExtensionFor(mime))

	_, _, err = ValidateProof(strings.NewReader(""))
	require.ErrorIs(t, err, ErrEmptyFile)

	_, _, err = ValidateProof(strings.NewReader("just some text"))
	require.ErrorIs(t, err, ErrInvalidMimeType)

	_, _, err = ValidateProof(bytes.NewReader(make([]byte, MaxProofSize+1)))
	require.ErrorIs(t, err, ErrFileTooLarge)
}
