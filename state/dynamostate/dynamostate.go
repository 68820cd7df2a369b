// Package dynamostate implements the state.Repository port over Amazon
// DynamoDB for the serverless deployment, grounded on original_source's
// DynamoAdapter: a flat item per video keyed on video_id, with
// completed_segments incremented via an atomic UpdateExpression rather
// than a read-modify-write.
package dynamostate

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"

	hlsfragerrors "github.com/livepeer/hlsfrag/errors"
	"github.com/livepeer/hlsfrag/job"
)

type Adapter struct {
	Client    dynamodbiface.DynamoDBAPI
	TableName string
}

func New(client dynamodbiface.DynamoDBAPI, tableName string) Adapter {
	return Adapter{Client: client, TableName: tableName}
}

func (a Adapter) SaveVideoStatus(ctx context.Context, status job.VideoStatus) error {
	durationsJSON, err := json.Marshal(status.SegmentDurations)
	if err != nil {
		return err
	}
	_, err = a.Client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(a.TableName),
		Item: map[string]*dynamodb.AttributeValue{
			"video_id":            {S: aws.String(status.VideoID)},
			"source_key":          {S: aws.String(status.SourceKey)},
			"output_prefix":       {S: aws.String(status.OutputPrefix)},
			"total_segments":      {N: aws.String(strconv.Itoa(status.TotalSegments))},
			"completed_segments":  {N: aws.String("0")},
			"segment_durations":   {S: aws.String(string(durationsJSON))},
		},
	})
	if err != nil {
		return hlsfragerrors.IOFailure("saving video status", err)
	}
	return nil
}

func (a Adapter) GetVideoStatus(ctx context.Context, videoID string) (job.VideoStatus, error) {
	resp, err := a.Client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(a.TableName),
		Key: map[string]*dynamodb.AttributeValue{
			"video_id": {S: aws.String(videoID)},
		},
	})
	if err != nil {
		return job.VideoStatus{}, hlsfragerrors.IOFailure("reading video status", err)
	}
	if resp.Item == nil {
		return job.VideoStatus{}, hlsfragerrors.StaleState("video status not found for " + videoID)
	}

	status := job.VideoStatus{
		VideoID:      aws.StringValue(resp.Item["video_id"].S),
		SourceKey:    aws.StringValue(resp.Item["source_key"].S),
		OutputPrefix: aws.StringValue(resp.Item["output_prefix"].S),
	}
	if n := resp.Item["total_segments"]; n != nil && n.N != nil {
		status.TotalSegments, _ = strconv.Atoi(*n.N)
	}
	if d := resp.Item["segment_durations"]; d != nil && d.S != nil {
		_ = json.Unmarshal([]byte(*d.S), &status.SegmentDurations)
	}
	return status, nil
}

// IncrementCompleted increments completed_segments atomically server-side
// and returns the post-increment value, matching mark_segment_complete's
// UpdateExpression + ReturnValue:UpdatedNew pattern.
func (a Adapter) IncrementCompleted(ctx context.Context, videoID string) (int, error) {
	resp, err := a.Client.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(a.TableName),
		Key: map[string]*dynamodb.AttributeValue{
			"video_id": {S: aws.String(videoID)},
		},
		UpdateExpression: aws.String("SET completed_segments = completed_segments + :inc"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":inc": {N: aws.String("1")},
		},
		ReturnValues: aws.String(dynamodb.ReturnValueUpdatedNew),
	})
	if err != nil {
		return 0, hlsfragerrors.IOFailure("incrementing completed counter", err)
	}
	attr, ok := resp.Attributes["completed_segments"]
	if !ok || attr.N == nil {
		return 0, nil
	}
	n, _ := strconv.Atoi(*attr.N)
	return n, nil
}

func (a Adapter) DeleteVideoStatus(ctx context.Context, videoID string) error {
	_, err := a.Client.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(a.TableName),
		Key: map[string]*dynamodb.AttributeValue{
			"video_id": {S: aws.String(videoID)},
		},
	})
	if err != nil {
		return hlsfragerrors.IOFailure("deleting video status", err)
	}
	return nil
}
