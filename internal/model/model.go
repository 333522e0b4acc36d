// Package model holds the data types shared across the indexing pipeline,
// the store, and the retriever: CodeObject, DocumentNode, Relationship,
// IndexState, FileChecksum, SearchQuery, and SearchResult.
package model

import "time"

// ObjectType classifies a CodeObject.
type ObjectType string

const (
	ObjectClass       ObjectType = "CLASS"
	ObjectInterface   ObjectType = "INTERFACE"
	ObjectEnum        ObjectType = "ENUM"
	ObjectFunction    ObjectType = "FUNCTION"
	ObjectMethod      ObjectType = "METHOD"
	ObjectModule      ObjectType = "MODULE"
	ObjectConstructor ObjectType = "CONSTRUCTOR"
	ObjectProperty    ObjectType = "PROPERTY"
	ObjectVariable    ObjectType = "VARIABLE"
)

// Language identifies the source language of a CodeObject.
type Language string

const (
	LangPython     Language = "PYTHON"
	LangJava       Language = "JAVA"
	LangKotlin     Language = "KOTLIN"
	LangJavaScript Language = "JAVASCRIPT"
	LangTypeScript Language = "TYPESCRIPT"
)

// ASTMetadata carries AST-derived facts about a CodeObject: outbound calls,
// referenced names, and complexity counters.
type ASTMetadata struct {
	Calls          []string
	References     []string
	Complexity     int // cyclomatic complexity
	LOCComplexity  int // nesting-inducing subset of Complexity
	EnumMembers    []string
}

// CodeObject is a single parsed code unit (class, method, function, ...).
//
// Invariants: StartLine <= EndLine; RawContent is the source slice
// between ByteStart/ByteEnd (except a large class's summary chunk, whose
// RawContent is the generated summary) and Content contains RawContent;
// ScoreWeight is in [0.1, 1.2]; ID is derived
// from a content checksum so identical content at an identical location
// yields an identical ID.
type CodeObject struct {
	ID            string
	QualifiedName string

	AbsolutePath string
	RelativePath string
	StartLine    int
	EndLine      int
	ByteStart    int
	ByteEnd      int
	Language     Language

	ObjectType ObjectType

	// Content is the text actually sent to the embedder and BM25F encoder:
	// RawContent with an optional added-context prefix (file imports for a
	// class, the enclosing class signature for a method). Content always
	// contains RawContent as a substring.
	Content   string
	RawContent string
	Signature string
	Docstring string

	// ParentID is "" when the object has no enclosing unit. One level of
	// nesting is guaranteed: methods point to their enclosing class.
	ParentID string

	TokenCount       int
	UniqueTokenCount int
	ScoreWeight      float64

	AST ASTMetadata
}

// DocumentNodeType distinguishes a markdown section from a config section.
type DocumentNodeType string

const (
	NodeMarkdown DocumentNodeType = "markdown"
	NodeConfig   DocumentNodeType = "config"
)

// CodeReference is a name mentioned in a markdown section, along with why
// it was recognized as a code reference.
type CodeReference struct {
	Name        string
	Type        string
	MatchReason string
}

// DocumentNode is a retrievable markdown section or configuration section.
type DocumentNode struct {
	ID           string
	FilePath     string
	SectionTitle string
	StartLine    int
	EndLine      int
	NodeType     DocumentNodeType
	Content      string

	// Markdown-only.
	CodeReferences []CodeReference

	// Config-only.
	ConfigKeys     []string
	EnvReferences  []string
	SectionDepth   int
	ConfigFormat   string
}

// RelationshipKind enumerates the edge types in the code relationship graph.
type RelationshipKind string

const (
	RelCalls      RelationshipKind = "CALLS"
	RelReferences RelationshipKind = "REFERENCES"
	RelInherits   RelationshipKind = "INHERITS"
	RelImplements RelationshipKind = "IMPLEMENTS"
	RelContains   RelationshipKind = "CONTAINS"
)

// Relationship is a directed edge between two code units. TargetID may be a
// name-only stub (Resolved=false) when cross-file resolution is unavailable.
type Relationship struct {
	SourceID   string
	TargetID   string
	TargetName string
	Kind       RelationshipKind
	Resolved   bool
}

// IndexState is the per-project persisted sync checkpoint.
type IndexState struct {
	LastCommitHash string // empty when the repo is not under git or never synced
	TotalFiles     int
	TotalObjects   int
	Languages      []string
	UpdatedAt      time.Time
}

// FileChecksum records the last-seen content digest of a scanned file, used
// to skip unchanged files on a full re-index.
type FileChecksum struct {
	RelativePath string
	Checksum     string
}

// TypeFilter restricts SearchQuery/SearchResult to one retrievable kind.
type TypeFilter string

const (
	TypeAny      TypeFilter = ""
	TypeCode     TypeFilter = "code"
	TypeDocument TypeFilter = "document"
)

// SearchQuery is the retriever's input.
type SearchQuery struct {
	Text           string
	Limit          int
	LanguageFilter string
	FileFilter     string
	TypeFilter     TypeFilter
	Expand         []string
}

// SearchResult is a single ranked hit returned by the retriever.
type SearchResult struct {
	ChunkID   string
	FilePath  string
	StartLine int
	EndLine   int
	Content   string
	NodeType  DocumentNodeType
	Language  Language
	Score     float64
	Rank      int
	Metadata  map[string]any
}

// InstructionType steers the embedding model toward query-vs-passage,
// code-vs-text, or QA-style retrieval. Carried verbatim into embed calls.
type InstructionType string

const (
	InstructionNL2CodeQuery     InstructionType = "NL2CODE_QUERY"
	InstructionNL2CodePassage   InstructionType = "NL2CODE_PASSAGE"
	InstructionCode2CodeQuery   InstructionType = "CODE2CODE_QUERY"
	InstructionCode2CodePassage InstructionType = "CODE2CODE_PASSAGE"
	InstructionQAQuery          InstructionType = "QA_QUERY"
	InstructionQAPassage        InstructionType = "QA_PASSAGE"
	InstructionDocumentPassage  InstructionType = "DOCUMENT_PASSAGE"
)
