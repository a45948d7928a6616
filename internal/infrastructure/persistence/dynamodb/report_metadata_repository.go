package dynamodb

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dreschagin/cluster-health-reporter/internal/application/port"
)

const (
	defaultListLimit = 24
	maxListLimit     = 100

	attrPK          = "PK"
	attrSK          = "SK"
	attrReportID    = "report_id"
	attrPeriod      = "period"
	attrStorageKey  = "storage_key"
	attrURL         = "url"
	attrContentType = "content_type"
	attrSizeBytes   = "size_bytes"
	attrOverall     = "overall"
	attrIssueCount  = "issue_count"
	attrGeneratedAt = "generated_at"
	attrExpiresAt   = "expires_at"
)

type Config struct {
	TableName       string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	StrongReads     bool
}

// ReportMetadataRepository индексирует метаданные отчетов в DynamoDB.
// Partition key - период отчета, sort key - время генерации:
// выборка "последние N отчетов периода" идет одним Query без сканов.
type ReportMetadataRepository struct {
	client      *dynamodb.Client
	tableName   string
	strongReads bool
}

type cursorPayload struct {
	Period string                 `json:"period"`
	FromMS int64                  `json:"from_ms,omitempty"`
	ToMS   int64                  `json:"to_ms,omitempty"`
	Key    map[string]cursorValue `json:"key"`
}

type cursorValue struct {
	S string `json:"s,omitempty"`
	N string `json:"n,omitempty"`
}

func NewReportMetadataRepository(ctx context.Context, cfg Config) (*ReportMetadataRepository, error) {
	if strings.TrimSpace(cfg.TableName) == "" {
		return nil, fmt.Errorf("dynamodb table name is required")
	}

	if strings.TrimSpace(cfg.Region) == "" {
		cfg.Region = "us-east-1"
	}

	loadOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	accessKeyID := strings.TrimSpace(cfg.AccessKeyID)
	secretAccessKey := strings.TrimSpace(cfg.SecretAccessKey)
	if accessKeyID != "" || secretAccessKey != "" {
		if accessKeyID == "" || secretAccessKey == "" {
			return nil, fmt.Errorf("both dynamodb access key id and secret access key are required for static credentials")
		}
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws config for dynamodb: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(options *dynamodb.Options) {
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			options.BaseEndpoint = &endpoint
		}
	})

	return &ReportMetadataRepository{
		client:      client,
		tableName:   strings.TrimSpace(cfg.TableName),
		strongReads: cfg.StrongReads,
	}, nil
}

// Put регистрирует один отчет
func (r *ReportMetadataRepository) Put(ctx context.Context, record port.ReportMetadata) error {
	item, err := toItem(record)
	if err != nil {
		return err
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &r.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("dynamodb put failed: %w", err)
	}

	return nil
}

// ListByPeriod возвращает отчеты периода, новые первыми
func (r *ReportMetadataRepository) ListByPeriod(
	ctx context.Context,
	query port.ReportListQuery,
) (port.ReportListPage, error) {
	period := strings.TrimSpace(query.Period)
	if period == "" {
		return port.ReportListPage{}, fmt.Errorf("period is required")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	fromMS, toMS, hasRange, err := normalizeTimeRange(query.From, query.To)
	if err != nil {
		return port.ReportListPage{}, err
	}

	input := &dynamodb.QueryInput{
		TableName:        &r.tableName,
		Limit:            int32Pointer(int32(limit)),
		ScanIndexForward: boolPointer(false),
		ConsistentRead:   boolPointer(r.strongReads),
		ExpressionAttributeNames: map[string]string{
			"#pk": attrPK,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: buildPK(period)},
		},
	}

	keyCondition := "#pk = :pk"
	if hasRange {
		input.ExpressionAttributeNames["#sk"] = attrSK
		input.ExpressionAttributeValues[":from"] = &types.AttributeValueMemberS{Value: buildSortBound(fromMS, "")}
		input.ExpressionAttributeValues[":to"] = &types.AttributeValueMemberS{Value: buildSortBound(toMS, "~")}
		keyCondition += " AND #sk BETWEEN :from AND :to"
	}
	input.KeyConditionExpression = &keyCondition

	if strings.TrimSpace(query.Cursor) != "" {
		exclusiveStartKey, err := decodeCursor(query.Cursor, period, fromMS, toMS)
		if err != nil {
			return port.ReportListPage{}, err
		}
		input.ExclusiveStartKey = exclusiveStartKey
	}

	output, err := r.client.Query(ctx, input)
	if err != nil {
		return port.ReportListPage{}, fmt.Errorf("dynamodb query failed: %w", err)
	}

	items := make([]port.ReportMetadata, 0, len(output.Items))
	for _, raw := range output.Items {
		item, err := fromItem(raw)
		if err != nil {
			return port.ReportListPage{}, err
		}
		items = append(items, item)
	}

	nextCursor := ""
	if len(output.LastEvaluatedKey) > 0 {
		nextCursor, err = encodeCursor(output.LastEvaluatedKey, period, fromMS, toMS)
		if err != nil {
			return port.ReportListPage{}, err
		}
	}

	return port.ReportListPage{
		Items:      items,
		NextCursor: nextCursor,
	}, nil
}

func toItem(record port.ReportMetadata) (map[string]types.AttributeValue, error) {
	reportID := strings.TrimSpace(record.ReportID)
	period := strings.TrimSpace(record.Period)
	storageKey := strings.TrimSpace(record.StorageKey)
	if reportID == "" {
		return nil, fmt.Errorf("report_id is required")
	}
	if period == "" {
		return nil, fmt.Errorf("period is required")
	}
	if storageKey == "" {
		return nil, fmt.Errorf("storage_key is required")
	}

	generatedAt := record.GeneratedAt.UTC()
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}
	generatedAtMS := generatedAt.UnixMilli()

	item := map[string]types.AttributeValue{
		attrPK:          &types.AttributeValueMemberS{Value: buildPK(period)},
		attrSK:          &types.AttributeValueMemberS{Value: buildSK(generatedAtMS, reportID)},
		attrReportID:    &types.AttributeValueMemberS{Value: reportID},
		attrPeriod:      &types.AttributeValueMemberS{Value: period},
		attrStorageKey:  &types.AttributeValueMemberS{Value: storageKey},
		attrOverall:     &types.AttributeValueMemberS{Value: record.OverallState},
		attrIssueCount:  &types.AttributeValueMemberN{Value: strconv.Itoa(record.IssueCount)},
		attrGeneratedAt: &types.AttributeValueMemberN{Value: strconv.FormatInt(generatedAtMS, 10)},
	}

	if url := strings.TrimSpace(record.URL); url != "" {
		item[attrURL] = &types.AttributeValueMemberS{Value: url}
	}
	if contentType := strings.TrimSpace(record.ContentType); contentType != "" {
		item[attrContentType] = &types.AttributeValueMemberS{Value: contentType}
	}
	if record.SizeBytes > 0 {
		item[attrSizeBytes] = &types.AttributeValueMemberN{Value: strconv.FormatInt(record.SizeBytes, 10)}
	}
	if !record.ExpiresAt.IsZero() {
		item[attrExpiresAt] = &types.AttributeValueMemberN{Value: strconv.FormatInt(record.ExpiresAt.UTC().Unix(), 10)}
	}

	return item, nil
}

func fromItem(item map[string]types.AttributeValue) (port.ReportMetadata, error) {
	reportID, err := attrStringValue(item, attrReportID)
	if err != nil {
		return port.ReportMetadata{}, err
	}
	period, err := attrStringValue(item, attrPeriod)
	if err != nil {
		return port.ReportMetadata{}, err
	}
	storageKey, err := attrStringValue(item, attrStorageKey)
	if err != nil {
		return port.ReportMetadata{}, err
	}
	generatedAtMS, err := attrInt64Value(item, attrGeneratedAt)
	if err != nil {
		return port.ReportMetadata{}, err
	}

	record := port.ReportMetadata{
		ReportID:     reportID,
		Period:       period,
		StorageKey:   storageKey,
		URL:          optionalString(item, attrURL),
		ContentType:  optionalString(item, attrContentType),
		SizeBytes:    optionalInt64(item, attrSizeBytes),
		OverallState: optionalString(item, attrOverall),
		IssueCount:   int(optionalInt64(item, attrIssueCount)),
		GeneratedAt:  time.UnixMilli(generatedAtMS).UTC(),
	}

	expiresAtSeconds := optionalInt64(item, attrExpiresAt)
	if expiresAtSeconds > 0 {
		record.ExpiresAt = time.Unix(expiresAtSeconds, 0).UTC()
	}

	return record, nil
}

func normalizeTimeRange(from, to time.Time) (int64, int64, bool, error) {
	from = from.UTC()
	to = to.UTC()
	if from.IsZero() && to.IsZero() {
		return 0, math.MaxInt64, false, nil
	}

	fromMS := int64(0)
	toMS := int64(math.MaxInt64)
	if !from.IsZero() {
		fromMS = from.UnixMilli()
	}
	if !to.IsZero() {
		toMS = to.UnixMilli()
	}

	if fromMS > toMS {
		return 0, 0, false, fmt.Errorf("from must be less than or equal to to")
	}

	return fromMS, toMS, true, nil
}

func buildPK(period string) string {
	return "PERIOD#" + period
}

func buildSK(generatedAtMS int64, reportID string) string {
	return fmt.Sprintf("TS#%013d#ID#%s", generatedAtMS, reportID)
}

func buildSortBound(tsMS int64, suffix string) string {
	return fmt.Sprintf("TS#%013d#%s", tsMS, suffix)
}

func encodeCursor(
	key map[string]types.AttributeValue,
	period string,
	fromMS, toMS int64,
) (string, error) {
	values := make(map[string]cursorValue, len(key))
	for attributeName, raw := range key {
		switch value := raw.(type) {
		case *types.AttributeValueMemberS:
			values[attributeName] = cursorValue{S: value.Value}
		case *types.AttributeValueMemberN:
			values[attributeName] = cursorValue{N: value.Value}
		default:
			return "", fmt.Errorf("unsupported cursor attribute type for %s", attributeName)
		}
	}

	payload := cursorPayload{
		Period: period,
		FromMS: fromMS,
		ToMS:   toMS,
		Key:    values,
	}

	serialized, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(serialized), nil
}

func decodeCursor(
	cursor, period string,
	fromMS, toMS int64,
) (map[string]types.AttributeValue, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor")
	}

	var payload cursorPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("invalid cursor")
	}

	if payload.Period != period || payload.FromMS != fromMS || payload.ToMS != toMS {
		return nil, fmt.Errorf("cursor does not match query filters")
	}

	key := make(map[string]types.AttributeValue, len(payload.Key))
	for attributeName, value := range payload.Key {
		if value.S != "" {
			key[attributeName] = &types.AttributeValueMemberS{Value: value.S}
			continue
		}
		if value.N != "" {
			key[attributeName] = &types.AttributeValueMemberN{Value: value.N}
			continue
		}
		return nil, fmt.Errorf("invalid cursor")
	}

	return key, nil
}

func attrStringValue(item map[string]types.AttributeValue, name string) (string, error) {
	raw, ok := item[name]
	if !ok {
		return "", fmt.Errorf("missing attribute %s", name)
	}
	value, ok := raw.(*types.AttributeValueMemberS)
	if !ok || strings.TrimSpace(value.Value) == "" {
		return "", fmt.Errorf("invalid attribute %s", name)
	}
	return value.Value, nil
}

func optionalString(item map[string]types.AttributeValue, name string) string {
	raw, ok := item[name]
	if !ok {
		return ""
	}
	value, ok := raw.(*types.AttributeValueMemberS)
	if !ok {
		return ""
	}
	return value.Value
}

func attrInt64Value(item map[string]types.AttributeValue, name string) (int64, error) {
	raw, ok := item[name]
	if !ok {
		return 0, fmt.Errorf("missing attribute %s", name)
	}
	value, ok := raw.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("invalid attribute %s", name)
	}
	parsed, err := strconv.ParseInt(value.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid attribute %s: %w", name, err)
	}
	return parsed, nil
}

func optionalInt64(item map[string]types.AttributeValue, name string) int64 {
	raw, ok := item[name]
	if !ok {
		return 0
	}
	value, ok := raw.(*types.AttributeValueMemberN)
	if !ok {
		return 0
	}
	parsed, err := strconv.ParseInt(value.Value, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func boolPointer(v bool) *bool {
	return &v
}

func int32Pointer(v int32) *int32 {
	return &v
}
