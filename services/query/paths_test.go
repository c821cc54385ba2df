package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var pathTestCases = []struct {
	path           string
	expectedName   string
	expectedParent string
}{
	{path: `C:\docs\report.pdf`, expectedName: "report.pdf", expectedParent: `C:\docs`},
	{path: `C:\report.pdf`, expectedName: "report.pdf", expectedParent: `C:\`},
	{path: "/home/me/会社案内.txt", expectedName: "会社案内.txt", expectedParent: "/home/me"},
	{path: "/report.pdf", expectedName: "report.pdf", expectedParent: "/"},
	{path: `\\server\share\a.txt`, expectedName: "a.txt", expectedParent: `\\server\share`},
	{path: "report.pdf", expectedName: "report.pdf", expectedParent: ""},
	{path: "/docs/mixed\\sub/a.txt", expectedName: "a.txt", expectedParent: "/docs/mixed\\sub"},
}

func TestFileNameAndParentDir(t *testing.T) {
	for _, testCase := range pathTestCases {
		t.Run(testCase.path, func(t *testing.T) {
			assert := require.New(t)
			assert.Equal(testCase.expectedName, FileName(testCase.path))
			assert.Equal(testCase.expectedParent, ParentDir(testCase.path))
		})
	}
}
