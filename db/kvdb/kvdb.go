package kvdb

type KV struct {
	Key   string
	Value string
}

type DB interface {
	Set(bucket string, key string, value string) error
	SetMany(bucket string, entries []KV) error
	Get(bucket string, key string) (string, error)
	Delete(bucket string, key string) error
	GetAllKeys(bucket string) ([]string, error)
	ScanPrefix(bucket string, prefix string, limit int) ([]KV, error)
	Count(bucket string) (int, error)
	Close() error
}
