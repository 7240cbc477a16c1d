package contracts

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/contract_snapshot.json
var snapshotSchemaSource []byte

const snapshotSchemaName = "contract_snapshot.json"

var (
	ErrSnapshotInvalid = errors.New("contracts: snapshot invalid")
	ErrSnapshotEmpty   = errors.New("contracts: snapshot empty")
)

// SnapshotIssue is a single schema violation found while decoding a snapshot.
type SnapshotIssue struct {
	Location string
	Message  string
}

// SnapshotError lists the schema violations of a rejected snapshot.
type SnapshotError struct {
	Issues []SnapshotIssue
}

func (e *SnapshotError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "#"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return fmt.Sprintf("%s: %s", ErrSnapshotInvalid, strings.Join(parts, "; "))
}

func (e *SnapshotError) Unwrap() error {
	return ErrSnapshotInvalid
}

var (
	snapshotSchemaOnce sync.Once
	snapshotSchema     *jsonschema.Schema
	snapshotSchemaErr  error
)

func compiledSnapshotSchema() (*jsonschema.Schema, error) {
	snapshotSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(snapshotSchemaName, bytes.NewReader(snapshotSchemaSource)); err != nil {
			snapshotSchemaErr = err
			return
		}
		snapshotSchema, snapshotSchemaErr = compiler.Compile(snapshotSchemaName)
	})
	return snapshotSchema, snapshotSchemaErr
}

// EncodeSnapshot serializes a contract with its history.
func EncodeSnapshot(contract *Contract) ([]byte, error) {
	if contract == nil {
		return nil, ErrSnapshotEmpty
	}
	return json.Marshal(contract)
}

// DecodeSnapshot validates data against the snapshot schema and decodes it.
func DecodeSnapshot(data []byte) (*Contract, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrSnapshotEmpty
	}

	schema, err := compiledSnapshotSchema()
	if err != nil {
		return nil, fmt.Errorf("contracts: compile snapshot schema: %w", err)
	}

	var document any
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	if err := schema.Validate(document); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return nil, &SnapshotError{Issues: collectSnapshotIssues(validationErr)}
		}
		return nil, fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}

	var contract Contract
	if err := json.Unmarshal(data, &contract); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	return &contract, nil
}

func collectSnapshotIssues(err *jsonschema.ValidationError) []SnapshotIssue {
	issues := []SnapshotIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, SnapshotIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
