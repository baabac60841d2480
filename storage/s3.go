package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// File is one object to be uploaded.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// S3API is the subset of the S3 client the adapter uses.
type S3API interface {
	PutObject(*s3.PutObjectInput) (*s3.PutObjectOutput, error)
	HeadObject(*s3.HeadObjectInput) (*s3.HeadObjectOutput, error)
	DeleteObject(*s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error)
}

// Client uploads files to a single S3 bucket.
type Client struct {
	bucketName string
	region     string
	svc        S3API

	now func() time.Time
}

// NewClient builds a Client from AWS_REGION, AWS_ACCESS_KEY_ID,
// AWS_SECRET_ACCESS_KEY and S3_BUCKET.
func NewClient() (*Client, error) {
	region := os.Getenv("AWS_REGION")
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
		Credentials: credentials.NewStaticCredentials(
			os.Getenv("AWS_ACCESS_KEY_ID"),
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			"",
		),
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		bucketName: os.Getenv("S3_BUCKET"),
		region:     region,
		svc:        s3.New(sess),
		now:        time.Now,
	}, nil
}

// NewClientWithAPI wires a Client onto an existing S3 API (used in tests).
func NewClientWithAPI(api S3API, bucket, region string) *Client {
	return &Client{bucketName: bucket, region: region, svc: api, now: time.Now}
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ObjectKey builds a collision-avoidant key: {folder}/{unixMillis}_{name}.
func (c *Client) ObjectKey(folder, filename string) string {
	name := unsafeKeyChars.ReplaceAllString(filename, "_")
	if name == "" {
		name = "file"
	}
	folder = strings.Trim(folder, "/")
	return fmt.Sprintf("%s/%d_%s", folder, c.now().UnixMilli(), name)
}

// Upload writes files to the bucket and returns their public URLs in input
// order: urls[i] corresponds to files[i]. The batch is all-or-nothing; the
// first failure aborts with no partial result. Keys are never overwritten.
func (c *Client) Upload(ctx context.Context, files []File, folder string) ([]string, error) {
	if len(files) == 0 {
		return []string{}, nil
	}

	urls := make([]string, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		key := c.ObjectKey(folder, f.Name)
		exists, err := c.objectExists(key)
		if err != nil {
			return nil, fmt.Errorf("upload %q: %w", f.Name, err)
		}
		if exists {
			return nil, fmt.Errorf("upload %q: object key %q already exists", f.Name, key)
		}

		_, err = c.svc.PutObject(&s3.PutObjectInput{
			Bucket:      aws.String(c.bucketName),
			Key:         aws.String(key),
			Body:        aws.ReadSeekCloser(bytes.NewReader(f.Data)),
			ContentType: aws.String(f.ContentType),
		})
		if err != nil {
			return nil, fmt.Errorf("upload %q: %w", f.Name, err)
		}

		urls = append(urls, c.PublicURL(key))
	}

	return urls, nil
}

// PublicURL derives the object's public URL from bucket, region and key.
func (c *Client) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucketName, c.region, key)
}

// BaseURL is the prefix shared by every object URL in this bucket.
func (c *Client) BaseURL() string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", c.bucketName, c.region)
}

// Delete removes an object from the bucket.
func (c *Client) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.svc.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})
	return err
}

func (c *Client) objectExists(key string) (bool, error) {
	_, err := c.svc.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case "NotFound", s3.ErrCodeNoSuchKey:
			return false, nil
		}
	}
	return false, err
}
