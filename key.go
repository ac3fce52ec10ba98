package stmtcache

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
)

type (
	// Kind identifies which set of creation parameters a [Key] carries.
	Kind uint8
	// Key describes how a statement was compiled.
	// Two keys are equal when they have the same [Kind],
	// the same SQL text, and the same kind-specific parameters.
	// Keys of different kinds are never equal.
	//
	// The zero Key is not valid; use one of the constructors or [NewKey].
	Key struct {
		sql           string
		columnIndexes []int
		columnNames   []string
		hash          uint64
		generatedKeys,
		resultSetType,
		resultSetConcurrency,
		resultSetHoldability int
		kind Kind
	}
	// KeyOption supplies an optional creation parameter to [NewKey].
	KeyOption func(*keyParams)
	keyParams struct {
		columnIndexes []int
		columnNames   []string
		generatedKeys,
		resultSetType,
		resultSetConcurrency,
		resultSetHoldability int
		hasGeneratedKeys,
		hasColumnIndexes,
		hasColumnNames,
		hasResultSet,
		hasHoldability,
		call bool
	}
)

const (
	_ Kind = iota
	// Plain is a prepared statement with no optional parameters.
	Plain
	// GeneratedKeys is a prepared statement with an auto-generated-keys flag.
	GeneratedKeys
	// ColumnIndexes is a prepared statement returning the indexed columns.
	ColumnIndexes
	// ColumnNames is a prepared statement returning the named columns.
	ColumnNames
	// ResultSet is a prepared statement with a result-set type and concurrency.
	ResultSet
	// HoldableResultSet is [ResultSet] plus a result-set holdability.
	HoldableResultSet
	// Call is a callable (stored procedure) statement with no optional parameters.
	Call
	// CallResultSet is a callable statement with a result-set type and concurrency.
	CallResultSet
	// CallHoldableResultSet is [CallResultSet] plus a result-set holdability.
	CallHoldableResultSet
)

const prime = 31

var kindNames = [...]string{
	Plain:                 "plain",
	GeneratedKeys:         "generated-keys",
	ColumnIndexes:         "column-indexes",
	ColumnNames:           "column-names",
	ResultSet:             "result-set",
	HoldableResultSet:     "holdable-result-set",
	Call:                  "call",
	CallResultSet:         "call-result-set",
	CallHoldableResultSet: "call-holdable-result-set",
}

func (k Kind) String() string {
	if k == 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// seed is folded into every hash so that keys which differ
// only by kind are unlikely to collide.
func (k Kind) seed() uint64 { return uint64(k) * 11 * prime }

// PlainKey returns a [Plain] key for sql.
// It panics if sql is empty.
func PlainKey(sql string) Key {
	return newKey(Key{kind: Plain, sql: sql})
}

// GeneratedKeysKey returns a [GeneratedKeys] key.
// It panics if sql is empty.
func GeneratedKeysKey(sql string, autoGeneratedKeys int) Key {
	return newKey(Key{
		kind:          GeneratedKeys,
		sql:           sql,
		generatedKeys: autoGeneratedKeys,
	})
}

// ColumnIndexesKey returns a [ColumnIndexes] key.
// The slice is copied. It panics if sql is empty.
func ColumnIndexesKey(sql string, columnIndexes []int) Key {
	return newKey(Key{
		kind:          ColumnIndexes,
		sql:           sql,
		columnIndexes: slices.Clone(columnIndexes),
	})
}

// ColumnNamesKey returns a [ColumnNames] key.
// The slice is copied. It panics if sql is empty.
func ColumnNamesKey(sql string, columnNames []string) Key {
	return newKey(Key{
		kind:        ColumnNames,
		sql:         sql,
		columnNames: slices.Clone(columnNames),
	})
}

// ResultSetKey returns a [ResultSet] key.
// It panics if sql is empty.
func ResultSetKey(sql string, resultSetType, resultSetConcurrency int) Key {
	return newKey(Key{
		kind:                 ResultSet,
		sql:                  sql,
		resultSetType:        resultSetType,
		resultSetConcurrency: resultSetConcurrency,
	})
}

// HoldableResultSetKey returns a [HoldableResultSet] key.
// It panics if sql is empty.
func HoldableResultSetKey(sql string, resultSetType, resultSetConcurrency, resultSetHoldability int) Key {
	return newKey(Key{
		kind:                 HoldableResultSet,
		sql:                  sql,
		resultSetType:        resultSetType,
		resultSetConcurrency: resultSetConcurrency,
		resultSetHoldability: resultSetHoldability,
	})
}

// CallKey returns a [Call] key for sql.
// It panics if sql is empty.
func CallKey(sql string) Key {
	return newKey(Key{kind: Call, sql: sql})
}

// CallResultSetKey returns a [CallResultSet] key.
// It panics if sql is empty.
func CallResultSetKey(sql string, resultSetType, resultSetConcurrency int) Key {
	return newKey(Key{
		kind:                 CallResultSet,
		sql:                  sql,
		resultSetType:        resultSetType,
		resultSetConcurrency: resultSetConcurrency,
	})
}

// CallHoldableResultSetKey returns a [CallHoldableResultSet] key.
// It panics if sql is empty.
func CallHoldableResultSetKey(sql string, resultSetType, resultSetConcurrency, resultSetHoldability int) Key {
	return newKey(Key{
		kind:                 CallHoldableResultSet,
		sql:                  sql,
		resultSetType:        resultSetType,
		resultSetConcurrency: resultSetConcurrency,
		resultSetHoldability: resultSetHoldability,
	})
}

// WithGeneratedKeys supplies an auto-generated-keys flag.
func WithGeneratedKeys(autoGeneratedKeys int) KeyOption {
	return func(p *keyParams) {
		p.generatedKeys = autoGeneratedKeys
		p.hasGeneratedKeys = true
	}
}

// WithColumnIndexes supplies the indexes of the columns to return.
func WithColumnIndexes(columnIndexes ...int) KeyOption {
	return func(p *keyParams) {
		p.columnIndexes = columnIndexes
		p.hasColumnIndexes = true
	}
}

// WithColumnNames supplies the names of the columns to return.
func WithColumnNames(columnNames ...string) KeyOption {
	return func(p *keyParams) {
		p.columnNames = columnNames
		p.hasColumnNames = true
	}
}

// WithResultSet supplies a result-set type and concurrency.
func WithResultSet(resultSetType, resultSetConcurrency int) KeyOption {
	return func(p *keyParams) {
		p.resultSetType = resultSetType
		p.resultSetConcurrency = resultSetConcurrency
		p.hasResultSet = true
	}
}

// WithHoldability supplies a result-set holdability.
// It must be combined with [WithResultSet].
func WithHoldability(resultSetHoldability int) KeyOption {
	return func(p *keyParams) {
		p.resultSetHoldability = resultSetHoldability
		p.hasHoldability = true
	}
}

// AsCall marks the statement as callable (a stored procedure call).
// Callable statements accept only result-set parameters.
func AsCall() KeyOption {
	return func(p *keyParams) { p.call = true }
}

// NewKey selects a [Kind] from the supplied options and returns the matching key.
// Options that belong to different kinds may not be combined.
// Errors wrap [ErrInvalidKey].
func NewKey(sql string, options ...KeyOption) (Key, error) {
	if sql == "" {
		return Key{}, emptySQLError()
	}
	var params keyParams
	for _, apply := range options {
		apply(&params)
	}
	kind, err := params.kind()
	if err != nil {
		return Key{}, err
	}
	key := Key{
		kind:                 kind,
		sql:                  sql,
		generatedKeys:        params.generatedKeys,
		columnIndexes:        slices.Clone(params.columnIndexes),
		columnNames:          slices.Clone(params.columnNames),
		resultSetType:        params.resultSetType,
		resultSetConcurrency: params.resultSetConcurrency,
		resultSetHoldability: params.resultSetHoldability,
	}
	key.hash = key.computeHash()
	return key, nil
}

func (p *keyParams) kind() (Kind, error) {
	if p.hasHoldability && !p.hasResultSet {
		return 0, invalidKeyError("holdability requires a result-set type and concurrency")
	}
	var supplied int
	for _, has := range [...]bool{
		p.hasGeneratedKeys,
		p.hasColumnIndexes,
		p.hasColumnNames,
		p.hasResultSet,
	} {
		if has {
			supplied++
		}
	}
	if supplied > 1 {
		return 0, invalidKeyError("conflicting statement parameters")
	}
	if p.call {
		switch {
		case p.hasHoldability:
			return CallHoldableResultSet, nil
		case p.hasResultSet:
			return CallResultSet, nil
		case supplied == 0:
			return Call, nil
		default:
			return 0, invalidKeyError("callable statements only accept result-set parameters")
		}
	}
	switch {
	case p.hasGeneratedKeys:
		return GeneratedKeys, nil
	case p.hasColumnIndexes:
		return ColumnIndexes, nil
	case p.hasColumnNames:
		return ColumnNames, nil
	case p.hasHoldability:
		return HoldableResultSet, nil
	case p.hasResultSet:
		return ResultSet, nil
	default:
		return Plain, nil
	}
}

func newKey(key Key) Key {
	if key.sql == "" {
		panic(emptySQLError())
	}
	key.hash = key.computeHash()
	return key
}

// computeHash folds the kind seed and each kind-specific
// field (in declaration order) with a multiplicative combiner,
// finishing with the SQL text.
func (k *Key) computeHash() uint64 {
	hash := k.kind.seed()
	switch k.kind {
	case GeneratedKeys:
		hash += uint64(k.generatedKeys)
	case ColumnIndexes:
		hash += hashInts(k.columnIndexes)
	case ColumnNames:
		hash += hashStrings(k.columnNames)
	case ResultSet, CallResultSet:
		hash += uint64(k.resultSetType)
		hash = prime*hash + uint64(k.resultSetConcurrency)
	case HoldableResultSet, CallHoldableResultSet:
		hash += uint64(k.resultSetType)
		hash = prime*hash + uint64(k.resultSetConcurrency)
		hash = prime*hash + uint64(k.resultSetHoldability)
	}
	return prime*hash + xxhash.Sum64String(k.sql)
}

func hashInts(values []int) uint64 {
	var hash uint64 = 1
	for _, value := range values {
		hash = prime*hash + uint64(value)
	}
	return hash
}

func hashStrings(values []string) uint64 {
	var hash uint64 = 1
	for _, value := range values {
		hash = prime*hash + xxhash.Sum64String(value)
	}
	return hash
}

// Kind returns the key's kind.
func (k Key) Kind() Kind { return k.kind }

// SQL returns the statement text.
func (k Key) SQL() string { return k.sql }

// Hash returns a hash of the key consistent with [Key.Equal].
func (k Key) Hash() uint64 { return k.hash }

// Equal reports whether k and other describe the same statement.
func (k Key) Equal(other Key) bool {
	if k.kind != other.kind || k.hash != other.hash {
		return false
	}
	var fieldsEqual bool
	switch k.kind {
	case Plain, Call:
		fieldsEqual = true
	case GeneratedKeys:
		fieldsEqual = k.generatedKeys == other.generatedKeys
	case ColumnIndexes:
		fieldsEqual = slices.Equal(k.columnIndexes, other.columnIndexes)
	case ColumnNames:
		fieldsEqual = slices.Equal(k.columnNames, other.columnNames)
	case ResultSet, CallResultSet:
		fieldsEqual = k.resultSetType == other.resultSetType &&
			k.resultSetConcurrency == other.resultSetConcurrency
	case HoldableResultSet, CallHoldableResultSet:
		fieldsEqual = k.resultSetType == other.resultSetType &&
			k.resultSetConcurrency == other.resultSetConcurrency &&
			k.resultSetHoldability == other.resultSetHoldability
	default:
		return false
	}
	return fieldsEqual && k.sql == other.sql
}

func (k Key) String() string {
	switch k.kind {
	case GeneratedKeys:
		return fmt.Sprintf("%s(%q, %d)", k.kind, k.sql, k.generatedKeys)
	case ColumnIndexes:
		return fmt.Sprintf("%s(%q, %v)", k.kind, k.sql, k.columnIndexes)
	case ColumnNames:
		return fmt.Sprintf("%s(%q, %q)", k.kind, k.sql, k.columnNames)
	case ResultSet, CallResultSet:
		return fmt.Sprintf("%s(%q, %d, %d)", k.kind, k.sql,
			k.resultSetType, k.resultSetConcurrency)
	case HoldableResultSet, CallHoldableResultSet:
		return fmt.Sprintf("%s(%q, %d, %d, %d)", k.kind, k.sql,
			k.resultSetType, k.resultSetConcurrency, k.resultSetHoldability)
	default:
		return fmt.Sprintf("%s(%q)", k.kind, k.sql)
	}
}
