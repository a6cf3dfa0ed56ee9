package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ludo-technologies/cukereport/domain"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "parser")

// Parser decodes Cucumber JSON result documents into features
type Parser struct {
	readFile func(string) ([]byte, error)
}

// NewParser creates a new result parser reading from the local file system
func NewParser() *Parser {
	return &Parser{readFile: os.ReadFile}
}

// ParseFiles parses every source in order. The first source that cannot be
// read or decoded aborts parsing with a parse error naming it.
func (p *Parser) ParseFiles(paths []string) ([]*domain.Feature, error) {
	var features []*domain.Feature
	for _, path := range paths {
		content, err := p.readFile(path)
		if err != nil {
			return nil, domain.NewParseError(path, err)
		}

		parsed, err := p.ParseFile(path, content)
		if err != nil {
			return nil, err
		}
		features = append(features, parsed...)
	}
	return features, nil
}

// ParseFile parses one result document. Every returned feature records
// filename as its source.
func (p *Parser) ParseFile(filename string, source []byte) ([]*domain.Feature, error) {
	if len(bytes.TrimSpace(source)) == 0 {
		return nil, domain.NewParseError(filename, fmt.Errorf("empty result document"))
	}

	var raw []rawFeature
	if err := json.Unmarshal(source, &raw); err != nil {
		return nil, domain.NewParseError(filename, err)
	}
	if raw == nil {
		return nil, domain.NewParseError(filename, fmt.Errorf("result document must be a JSON array of features"))
	}

	features := make([]*domain.Feature, 0, len(raw))
	for i := range raw {
		feature, err := raw[i].toFeature(i)
		if err != nil {
			return nil, domain.NewParseError(filename, err)
		}
		feature.Source = filename
		features = append(features, feature)
	}

	logger.WithFields(log.Fields{
		"source":   filename,
		"features": len(features),
	}).Debug("Parsed result file")

	return features, nil
}
