package storage

// namespaced prefixes every key before handing it to the wrapped KV.
type namespaced struct {
	kv     KV
	prefix string
}

// Namespaced returns a view of kv in which every key is prefixed with prefix.
// The sync server uses it to keep each user's data apart inside one backend.
func Namespaced(kv KV, prefix string) KV {
	return &namespaced{kv: kv, prefix: prefix}
}

func (n *namespaced) Get(key string) (string, error) { return n.kv.Get(n.prefix + key) }
func (n *namespaced) Set(key, value string) error    { return n.kv.Set(n.prefix+key, value) }
