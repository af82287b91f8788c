package e2e_test

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// generateNestedJSON creates a deeply nested JSON structure for benchmarking
func generateNestedJSON(depth int, width int) map[string]interface{} {
	if depth <= 0 {
		return map[string]interface{}{
			"leaf_value": "data",
			"packed":     `{"inner":[1,2,3]}`,
			"count":      rand.Intn(100),
			"enabled":    rand.Intn(2) == 1,
		}
	}

	result := make(map[string]interface{})
	for i := 0; i < width; i++ {
		key := fmt.Sprintf("nested_%d_%d", depth, i)
		result[key] = generateNestedJSON(depth-1, width)
	}
	return result
}

// generateArray creates an array of flat records
func generateArray(size int) []map[string]interface{} {
	array := make([]map[string]interface{}, size)
	for i := 0; i < size; i++ {
		array[i] = map[string]interface{}{
			"id":       i,
			"name":     fmt.Sprintf("Item %d", i),
			"value":    rand.Float64() * 100,
			"active":   i%2 == 0,
			"category": fmt.Sprintf("Category %d", i%5),
		}
	}
	return array
}

func writeBenchFile(b *testing.B, dir, name string, data interface{}) string {
	b.Helper()
	jsonData, err := json.MarshalIndent(data, "", "  ")
	require.NoError(b, err)

	path := filepath.Join(dir, name+".json")
	require.NoError(b, os.WriteFile(path, jsonData, 0644))
	return path
}

// BenchmarkDeepNesting benchmarks formatting of deeply nested documents
func BenchmarkDeepNesting(b *testing.B) {
	if testing.Short() {
		b.Skip("skipping benchmark in short mode")
	}
	tempDir := b.TempDir()

	depths := []struct {
		name  string
		depth int
		width int
	}{
		{"Depth3Width3", 3, 3},
		{"Depth5Width2", 5, 2},
		{"Depth2Width10", 2, 10},
	}

	for _, depth := range depths {
		b.Run(depth.name, func(b *testing.B) {
			jsonFile := writeBenchFile(b, tempDir, depth.name, generateNestedJSON(depth.depth, depth.width))

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				output, err := run(b, "", "format", "-i", jsonFile)
				require.NoError(b, err, "CLI command failed: %s", output)
			}
		})
	}
}

// BenchmarkRepair benchmarks the repair pipeline on large malformed arrays
func BenchmarkRepair(b *testing.B) {
	if testing.Short() {
		b.Skip("skipping benchmark in short mode")
	}
	tempDir := b.TempDir()

	sizes := []struct {
		name      string
		arraySize int
	}{
		{"Array100", 100},
		{"Array1000", 1000},
		{"Array5000", 5000},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			jsonData, err := json.Marshal(generateArray(size.arraySize))
			require.NoError(b, err)
			// Trailing commas and single quotes both need repairing
			broken := strings.ReplaceAll(string(jsonData), "}", ",}")
			for k := 0; k < 5; k++ {
				broken = strings.ReplaceAll(broken, fmt.Sprintf(`"Category %d"`, k), fmt.Sprintf(`'Category %d'`, k))
			}

			jsonFile := filepath.Join(tempDir, size.name+".json")
			require.NoError(b, os.WriteFile(jsonFile, []byte(broken), 0644))

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				output, err := run(b, "", "fix", "--minify", "-i", jsonFile)
				require.NoError(b, err, "CLI command failed: %s", output)
			}
		})
	}
}

// BenchmarkSessionEdits benchmarks a scripted session of edits and undos
func BenchmarkSessionEdits(b *testing.B) {
	if testing.Short() {
		b.Skip("skipping benchmark in short mode")
	}
	tempDir := b.TempDir()
	jsonFile := writeBenchFile(b, tempDir, "records", generateArray(500))

	var script strings.Builder
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&script, "set %d.name \"renamed %d\"\n", i, i)
		if i%10 == 0 {
			fmt.Fprintf(&script, "delete %d.category\nundo\n", i)
		}
	}
	script.WriteString("quit\n")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		output, err := run(b, script.String(), "session", "--quiet", "--load", jsonFile)
		require.NoError(b, err, "CLI command failed: %s", output)
	}
}
