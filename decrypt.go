package samlgate

import (
	"github.com/philiph/samlgate/internal/adapters/driven/decrypt"
	"github.com/philiph/samlgate/internal/core/ports"
)

// Re-export Decryptor interface from ports
type Decryptor = ports.Decryptor

// Re-export decrypt adapter
type XMLEncDecryptor = decrypt.XMLEncDecryptor

var NewXMLEncDecryptor = decrypt.NewXMLEncDecryptor
