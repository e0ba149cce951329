package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"sop-agent/internal/models"
)

const (
	defaultChunkSize    = 1000 // bytes
	defaultChunkOverlap = 200  // bytes
)

// Parser splits PDF documents into page-tagged chunks.
type Parser struct {
	chunkSize    int
	chunkOverlap int
}

func New(chunkSize, chunkOverlap int) *Parser {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = defaultChunkOverlap
	}
	return &Parser{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// ParseDir parses every PDF directly under dir (non-recursive) into
// chunks. Files that fail to parse are skipped with a warning so one
// bad document does not block the whole build.
func (p *Parser) ParseDir(dir string) ([]models.Chunk, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	sort.Strings(paths)

	var chunks []models.Chunk
	for _, path := range paths {
		fileChunks, err := p.ParsePDF(path)
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("Skipping unparseable document")
			continue
		}
		chunks = append(chunks, fileChunks...)
	}
	return chunks, nil
}

// ParsePDF extracts the plain text of each page and splits it into
// overlapping chunks tagged with the source file name and page number.
func (p *Parser) ParsePDF(filePath string) ([]models.Chunk, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	fileName := filepath.Base(filePath)
	var chunks []models.Chunk
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract page %d: %w", i, err)
		}
		chunks = append(chunks, p.getChunks(pageText, fileName, i)...)
	}
	return chunks, nil
}

// get chunks from content, file name and page number
func (p *Parser) getChunks(content, fileName string, pageNumber int) []models.Chunk {
	var chunks []models.Chunk
	for i, chunkString := range chunkContent(content, p.chunkSize, p.chunkOverlap) {
		chunks = append(chunks, models.Chunk{
			Content:    chunkString,
			SourceFile: fileName,
			PageNumber: pageNumber,
			ChunkID:    i + 1,
		})
	}
	return chunks
}

// chunk content into chunks with maxChars and overlapChars
func chunkContent(content string, maxChars, overlapChars int) []string {
	// Handle edge cases
	if maxChars <= 0 {
		return nil
	}
	if overlapChars < 0 {
		overlapChars = 0
	}
	if overlapChars >= maxChars {
		overlapChars = maxChars / 2 // Reasonable default to avoid excessive overlap
	}

	content = strings.TrimSpace(content)
	contentLen := len(content)
	if contentLen == 0 {
		return nil
	}

	// If content is shorter than maxChars, return it as a single chunk
	if contentLen <= maxChars {
		return []string{content}
	}

	// Iterate through content, creating chunks with overlap
	var chunks []string
	start := 0
	for start < contentLen {
		end := min(start+maxChars, contentLen)

		// Find a clean break point (e.g., end of a word or sentence) if possible
		if end < contentLen {
			// Look for a space or punctuation within the last 10% of the chunk
			lookBack := min(maxChars/10, end-start)
			for i := end - 1; i >= end-lookBack && i > start; i-- {
				if content[i] == ' ' || content[i] == '\n' || content[i] == '.' {
					end = i + 1
					break
				}
			}
		}

		chunk := strings.TrimSpace(content[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		// Move start forward, accounting for overlap
		start += maxChars - overlapChars
		if start >= contentLen {
			break
		}
	}

	return chunks
}
