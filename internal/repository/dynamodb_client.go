package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"character-chat/internal/domain"
)

const (
	pkPrefixEmail  = "EMAIL#"
	pkPrefixSurvey = "SURVEY#"
	skEmail        = "EMAIL"
	skSurvey       = "RESPONSE"
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Client stores email captures and survey answers in a single DynamoDB table.
// Email uniqueness is enforced by keying items on the address.
type Client struct {
	api       dynamodbAPI
	tableName string
}

func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

func (c *Client) Backend() string { return "dynamodb" }

func emailPK(email string) string {
	return pkPrefixEmail + email
}

func surveyPK(id string) string {
	return pkPrefixSurvey + id
}

// SaveEmail writes the record unless the address is already present.
func (c *Client) SaveEmail(ctx context.Context, rec domain.EmailRecord) (domain.EmailRecord, error) {
	if rec.Email == "" {
		return domain.EmailRecord{}, errors.New("repository: SaveEmail: email is required")
	}
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                emailItem(rec),
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return domain.EmailRecord{}, fmt.Errorf("repository: SaveEmail: %w", domain.ErrDuplicate)
		}
		return domain.EmailRecord{}, fmt.Errorf("repository: SaveEmail: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return rec, nil
}

func (c *Client) SaveSurvey(ctx context.Context, resp domain.SurveyResponse) (domain.SurveyResponse, error) {
	if resp.ID == "" {
		return domain.SurveyResponse{}, errors.New("repository: SaveSurvey: id is required")
	}
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      surveyItem(resp),
	})
	if err != nil {
		return domain.SurveyResponse{}, fmt.Errorf("repository: SaveSurvey: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return resp, nil
}

func emailItem(rec domain.EmailRecord) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: emailPK(rec.Email)},
		"SK":         &types.AttributeValueMemberS{Value: skEmail},
		"id":         &types.AttributeValueMemberS{Value: rec.ID},
		"email":      &types.AttributeValueMemberS{Value: rec.Email},
		"source":     &types.AttributeValueMemberS{Value: rec.Source},
		"user_agent": &types.AttributeValueMemberS{Value: rec.UserAgent},
		"created_at": &types.AttributeValueMemberS{Value: rec.CreatedAt.UTC().Format(time.RFC3339Nano)},
	}
	putOptional(item, "ip_address", rec.IPAddress)
	return item
}

func surveyItem(resp domain.SurveyResponse) map[string]types.AttributeValue {
	features := make([]types.AttributeValue, 0, len(resp.SelectedFeatures))
	for _, f := range resp.SelectedFeatures {
		features = append(features, &types.AttributeValueMemberS{Value: f})
	}
	item := map[string]types.AttributeValue{
		"PK":                &types.AttributeValueMemberS{Value: surveyPK(resp.ID)},
		"SK":                &types.AttributeValueMemberS{Value: skSurvey},
		"id":                &types.AttributeValueMemberS{Value: resp.ID},
		"selected_features": &types.AttributeValueMemberL{Value: features},
		"created_at":        &types.AttributeValueMemberS{Value: resp.CreatedAt.UTC().Format(time.RFC3339Nano)},
	}
	putOptional(item, "custom_input", resp.CustomInput)
	putOptional(item, "user_agent", resp.UserAgent)
	putOptional(item, "ip_address", resp.IPAddress)
	return item
}

// putOptional omits absent values rather than storing empty strings.
func putOptional(item map[string]types.AttributeValue, key string, v *string) {
	if v == nil {
		return
	}
	item[key] = &types.AttributeValueMemberS{Value: *v}
}
