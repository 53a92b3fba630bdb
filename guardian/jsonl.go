package guardian

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteJSONL writes fetched articles to a JSON Lines file, one article per
// line, creating parent directories as needed.
func WriteJSONL(path string, articles []Article) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	enc := json.NewEncoder(writer)
	for i, article := range articles {
		if err := enc.Encode(article); err != nil {
			return fmt.Errorf("encode article %d: %w", i, err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// ReadJSONL streams articles back from a JSON Lines file. Undecodable
// lines are reported through the onSkip callback and do not abort the read.
func ReadJSONL(path string, onSkip func(line int, err error)) ([]Article, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	articles := make([]Article, 0)
	scanner := bufio.NewScanner(file)
	// Article bodies routinely exceed the default scanner buffer.
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		var article Article
		if err := json.Unmarshal(scanner.Bytes(), &article); err != nil {
			if onSkip != nil {
				onSkip(line, err)
			}
			continue
		}
		articles = append(articles, article)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return articles, nil
}
