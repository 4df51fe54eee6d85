package memory

// NamespaceNotes is the key prefix of operator notes appended to the system prompt.
const NamespaceNotes = "memory/"

// Entry is a key-value pair. Keys are /-separated relative paths and values
// are raw bytes.
type Entry struct {
	Key   string
	Value []byte
}
