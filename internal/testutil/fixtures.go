package testutil

// DoublerModel doubles input A and flags results above 10. Its two test
// cases cover a passing and a failing expectation.
const DoublerModel = `
name: Doubler
namespace: https://example.com/doubler
inputs:
  - id: in_a
    name: A
    typeRef: number
decisions:
  - id: d_double
    name: Double
    typeRef: number
    expression: A * 2
    informationRequirements:
      - id: r_a
        type: input
        href: in_a
  - id: d_big
    name: IsBig
    typeRef: boolean
    expression: Double > LIMIT
    informationRequirements:
      - id: r_double
        type: decision
        href: d_double
constants:
  - id: c_limit
    name: LIMIT
    type: number
    value: 10
testCases:
  - id: tc_big
    name: Big input
    inputs:
      in_a: 6
    expectations:
      - decisionId: d_big
        decisionName: IsBig
        expectedValue: true
      - decisionId: d_double
        decisionName: Double
        expectedValue: 12
  - id: tc_small
    name: Small input
    inputs:
      in_a: 3
    expectations:
      - decisionId: d_big
        decisionName: IsBig
        expectedValue: true
`

// PassingDoublerModel is DoublerModel without the failing test case.
const PassingDoublerModel = `
name: Doubler
inputs:
  - id: in_a
    name: A
    typeRef: number
decisions:
  - id: d_double
    name: Double
    expression: A * 2
    informationRequirements:
      - id: r_a
        type: input
        href: in_a
  - id: d_big
    name: IsBig
    expression: Double > 10
    informationRequirements:
      - id: r_double
        type: decision
        href: d_double
testCases:
  - id: tc_big
    name: Big input
    inputs:
      A: "6"
    expectations:
      - decisionId: d_big
        decisionName: IsBig
        expectedValue: true
`

// CyclicModel has two decisions requiring each other.
const CyclicModel = `
name: Cycle
decisions:
  - id: X
    name: X
    expression: Y + 1
    informationRequirements:
      - id: r1
        type: decision
        href: "Y"
  - id: "Y"
    name: "Y"
    expression: X + 1
    informationRequirements:
      - id: r2
        type: decision
        href: X
testCases:
  - id: tc
    name: Anything
    inputs: {}
    expectations:
      - decisionId: X
        decisionName: X
        expectedValue: 1
`
