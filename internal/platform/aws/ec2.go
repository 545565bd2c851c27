package aws

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// Subnet is the observed state of a VPC subnet.
type Subnet struct {
	ID               string
	VPCID            string
	AvailabilityZone string
	Tags             map[string]string
}

// GetSubnet returns the subnet with the given ID, or nil when it does not
// exist.
func (c *Client) GetSubnet(ctx context.Context, id string) (*Subnet, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	out, err := c.ec2.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{SubnetIds: []string{id}})
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to describe subnet %s: %w", id, err)
	}
	if len(out.Subnets) == 0 {
		return nil, nil
	}

	subnet := out.Subnets[0]
	return &Subnet{
		ID:               aws.ToString(subnet.SubnetId),
		VPCID:            aws.ToString(subnet.VpcId),
		AvailabilityZone: aws.ToString(subnet.AvailabilityZone),
		Tags:             ec2TagMap(subnet.Tags),
	}, nil
}

// TagSubnet applies tags to a subnet. Existing values for the same keys are
// overwritten.
func (c *Client) TagSubnet(ctx context.Context, id string, tags map[string]string) error {
	if len(tags) == 0 {
		return nil
	}
	if err := c.wait(ctx); err != nil {
		return err
	}
	_, err := c.ec2.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{id},
		Tags:      ec2TagSlice(tags),
	})
	if err != nil {
		return fmt.Errorf("failed to tag subnet %s: %w", id, err)
	}
	return nil
}

func ec2TagSlice(tags map[string]string) []ec2types.Tag {
	if len(tags) == 0 {
		return nil
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]ec2types.Tag, 0, len(tags))
	for _, k := range keys {
		out = append(out, ec2types.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}

func ec2TagMap(tags []ec2types.Tag) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	out := make(map[string]string, len(tags))
	for _, t := range tags {
		out[aws.ToString(t.Key)] = aws.ToString(t.Value)
	}
	return out
}
