package model

// DefaultS3Region is preselected in the connection form.
const DefaultS3Region = "eu-central-1"

// DefaultPostgresPort is used when the port field is left empty or invalid.
const DefaultPostgresPort = 5432

// S3Regions lists the regions offered in the connection form.
var S3Regions = []string{
	"us-east-1",
	"us-west-2",
	"eu-west-1",
	"eu-central-1",
	"ap-southeast-1",
	"ap-northeast-1",
}

// S3Options holds the credentials and location the user typed in.
// Path is the raw s3://bucket/prefix string; see source.ParseS3Path.
type S3Options struct {
	AccessKey string `json:"accessKey"`
	SecretKey string `json:"secretKey"`
	Region    string `json:"region"`
	Path      string `json:"s3Path"`
}

// Complete reports whether every field needed to connect is filled in.
func (o S3Options) Complete() bool {
	return o.AccessKey != "" && o.SecretKey != "" && o.Path != ""
}

// PostgresOptions holds the connection form for a PostgreSQL source.
// An empty Schema means all schemas.
type PostgresOptions struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	Schema   string `json:"schema"`
}

// Complete reports whether every required field is filled in.
func (o PostgresOptions) Complete() bool {
	return o.Host != "" && o.Database != "" && o.Username != ""
}

// Column describes one column of a previewed table, as reported by
// information_schema. Nullable is "YES" or "NO"; absent values are empty.
type Column struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Nullable  string `json:"nullable"`
	Default   string `json:"default"`
	MaxLength string `json:"maxLength"`
}

// IsNullable reports whether the column accepts NULL.
func (c Column) IsNullable() bool { return c.Nullable == "YES" }

// TablePreview is the schema and a sample of rows for one table.
type TablePreview struct {
	Table   string           `json:"table"`
	Columns []Column         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}
